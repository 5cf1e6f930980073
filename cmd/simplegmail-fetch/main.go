package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/misteral/simplegmail/internal/decode"
	"github.com/misteral/simplegmail/internal/fetch"
	"github.com/misteral/simplegmail/internal/gmail"
	"github.com/misteral/simplegmail/internal/message"
	"github.com/misteral/simplegmail/internal/rate"
	"github.com/misteral/simplegmail/internal/runtime"
)

type fetchConfig struct {
	cfgDir           string
	query            string
	labels           string
	thread           string
	attachments      string
	includeSpamTrash bool
	pageSize         int
	rps              int
	jsonOut          bool
}

func main() {
	cfg := parseFetchFlags()
	if err := run(cfg); err != nil {
		runtime.DefaultLogger().Error("simplegmail-fetch failed", "error", err)
		os.Exit(1)
	}
}

func parseFetchFlags() fetchConfig {
	cfgDir := flag.String("config", os.ExpandEnv("$HOME/.gmailctl"), "gmailctl auth directory")
	query := flag.String("query", "", "Gmail search query")
	labels := flag.String("labels", "", "comma separated label ids messages must match")
	thread := flag.String("thread", "", "fetch all messages of this thread instead of searching")
	attachments := flag.String("attachments", "reference", "attachment policy: ignore, reference or download")
	includeSpamTrash := flag.Bool("include-spam-trash", false, "include messages from spam and trash")
	pageSize := flag.Int("page-size", 500, "list page size (<=500)")
	rps := flag.Int("rps", 4, "max requests per second (0 disables limiting)")
	jsonOut := flag.Bool("json", false, "emit fetched messages as JSON")
	flag.Parse()

	return fetchConfig{
		cfgDir:           *cfgDir,
		query:            *query,
		labels:           *labels,
		thread:           *thread,
		attachments:      *attachments,
		includeSpamTrash: *includeSpamTrash,
		pageSize:         *pageSize,
		rps:              *rps,
		jsonOut:          *jsonOut,
	}
}

func run(cfg fetchConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	policy, err := decode.ParseAttachmentPolicy(cfg.attachments)
	if err != nil {
		return err
	}

	client, err := runtime.NewGmailClient(ctx, cfg.cfgDir, runtime.ScopeReadonly)
	if err != nil {
		return fmt.Errorf("create gmail client: %w", err)
	}
	factory := runtime.LocalCredFactory{CfgDir: cfg.cfgDir, Scope: runtime.ScopeReadonly}

	var limiter rate.Limiter
	if cfg.rps > 0 {
		bucket := rate.NewTokenBucket(cfg.rps)
		limiter = bucket
		defer bucket.Stop()
	}

	svc := fetch.NewService(client, factory, limiter, runtime.DefaultLogger())

	var msgs []*message.Message
	if cfg.thread != "" {
		msgs, err = svc.Thread(ctx, cfg.thread, policy)
	} else {
		q := gmail.ListQuery{
			Query:            cfg.query,
			LabelIDs:         splitList(cfg.labels),
			IncludeSpamTrash: cfg.includeSpamTrash,
			PageSize:         cfg.pageSize,
		}
		msgs, err = svc.Search(ctx, q, policy)
	}
	if err != nil {
		return err
	}

	if cfg.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(msgs)
	}
	for _, m := range msgs {
		fmt.Printf("%s\t%s\t%s\t%s\n", m.Date, m.Sender, m.Subject, m.Snippet)
	}
	return nil
}

func splitList(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
