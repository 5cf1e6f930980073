package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/misteral/simplegmail/internal/fetch"
	"github.com/misteral/simplegmail/internal/runtime"
)

type labelsConfig struct {
	cfgDir    string
	create    string
	deleteID  string
	messageID string
	add       string
	remove    string
	trash     bool
	untrash   bool
}

func main() {
	cfg := parseLabelsFlags()
	if err := run(cfg); err != nil {
		runtime.DefaultLogger().Error("simplegmail-labels failed", "error", err)
		os.Exit(1)
	}
}

func parseLabelsFlags() labelsConfig {
	cfgDir := flag.String("config", os.ExpandEnv("$HOME/.gmailctl"), "gmailctl auth directory")
	create := flag.String("create", "", "create a label with this name")
	deleteID := flag.String("delete", "", "delete the label with this id")
	messageID := flag.String("message", "", "message id to modify labels on")
	add := flag.String("add", "", "comma separated label ids to add to -message")
	remove := flag.String("remove", "", "comma separated label ids to remove from -message")
	trash := flag.Bool("trash", false, "move -message to the trash")
	untrash := flag.Bool("untrash", false, "remove -message from the trash")
	flag.Parse()

	return labelsConfig{
		cfgDir:    *cfgDir,
		create:    *create,
		deleteID:  *deleteID,
		messageID: *messageID,
		add:       *add,
		remove:    *remove,
		trash:     *trash,
		untrash:   *untrash,
	}
}

func run(cfg labelsConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := runtime.NewGmailClient(ctx, cfg.cfgDir, runtime.ScopeModify)
	if err != nil {
		return fmt.Errorf("create gmail client: %w", err)
	}

	if cfg.create != "" {
		label, err := client.CreateLabel(ctx, cfg.create)
		if err != nil {
			return err
		}
		fmt.Printf("created %s\t%s\n", label.ID, label.Name)
		return nil
	}
	if cfg.deleteID != "" {
		return client.DeleteLabel(ctx, cfg.deleteID)
	}

	if cfg.messageID != "" {
		svc := fetch.NewService(client, nil, nil, runtime.DefaultLogger())
		var labelIDs []string
		switch {
		case cfg.trash:
			labelIDs, err = svc.Trash(ctx, cfg.messageID)
		case cfg.untrash:
			labelIDs, err = svc.Untrash(ctx, cfg.messageID)
		default:
			labelIDs, err = svc.ModifyLabels(ctx, cfg.messageID, splitList(cfg.add), splitList(cfg.remove))
		}
		if err != nil {
			return err
		}
		fmt.Printf("message %s labels: %s\n", cfg.messageID, strings.Join(labelIDs, ","))
		return nil
	}

	// Default action: list the account's labels.
	labels, err := client.ListLabels(ctx)
	if err != nil {
		return err
	}
	for _, l := range labels {
		fmt.Printf("%s\t%s\n", l.ID, l.Name)
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
