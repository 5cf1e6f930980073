package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/misteral/simplegmail/internal/compose"
	"github.com/misteral/simplegmail/internal/runtime"
)

type sendConfig struct {
	cfgDir     string
	from       string
	to         string
	cc         string
	bcc        string
	subject    string
	plain      string
	html       string
	attach     string
	signature  bool
	threadID   string
	inReplyTo  string
	references string
}

func main() {
	cfg := parseSendFlags()
	if err := run(cfg); err != nil {
		runtime.DefaultLogger().Error("simplegmail-send failed", "error", err)
		os.Exit(1)
	}
}

func parseSendFlags() sendConfig {
	cfgDir := flag.String("config", os.ExpandEnv("$HOME/.gmailctl"), "gmailctl auth directory")
	from := flag.String("from", "", "sender, as Name <addr> or bare address")
	to := flag.String("to", "", "recipient, as Name <addr> or bare address")
	cc := flag.String("cc", "", "comma separated cc addresses")
	bcc := flag.String("bcc", "", "comma separated bcc addresses")
	subject := flag.String("subject", "", "subject line")
	plain := flag.String("plain", "", "plain text body")
	html := flag.String("html", "", "HTML body")
	attach := flag.String("attach", "", "comma separated attachment file paths")
	signature := flag.Bool("signature", false, "append the account alias signature to the HTML body")
	threadID := flag.String("thread-id", "", "thread id when replying")
	inReplyTo := flag.String("in-reply-to", "", "In-Reply-To header when replying")
	references := flag.String("references", "", "References header when replying")
	flag.Parse()

	return sendConfig{
		cfgDir:     *cfgDir,
		from:       *from,
		to:         *to,
		cc:         *cc,
		bcc:        *bcc,
		subject:    *subject,
		plain:      *plain,
		html:       *html,
		attach:     *attach,
		signature:  *signature,
		threadID:   *threadID,
		inReplyTo:  *inReplyTo,
		references: *references,
	}
}

func run(cfg sendConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := runtime.NewGmailClient(ctx, cfg.cfgDir, runtime.ScopeFull)
	if err != nil {
		return fmt.Errorf("create gmail client: %w", err)
	}

	svc := compose.NewService(client, runtime.DefaultLogger())

	ref, err := svc.Send(ctx, compose.Outgoing{
		Sender:          cfg.from,
		Recipient:       cfg.to,
		Subject:         cfg.subject,
		Plain:           cfg.plain,
		HTML:            cfg.html,
		CC:              splitList(cfg.cc),
		BCC:             splitList(cfg.bcc),
		AttachmentPaths: splitList(cfg.attach),
		Signature:       cfg.signature,
		ThreadID:        cfg.threadID,
		InReplyTo:       cfg.inReplyTo,
		References:      cfg.references,
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	fmt.Printf("sent %s (thread %s)\n", ref.ID, ref.ThreadID)
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
