package runtime

import (
	"context"
	"log/slog"
	"os"

	"github.com/mbrt/gmailctl/cmd/gmailctl/localcred"
	gmailapi "google.golang.org/api/gmail/v1"

	gc "github.com/misteral/simplegmail/internal/gmail"
)

// Scope selects how much of the account a client may touch.
type Scope int

const (
	ScopeReadonly Scope = iota
	ScopeModify
	// ScopeFull is required for sending.
	ScopeFull
)

func (s Scope) oauthScope() string {
	switch s {
	case ScopeReadonly:
		return gmailapi.GmailReadonlyScope
	case ScopeModify:
		return gmailapi.GmailModifyScope
	case ScopeFull:
		return gmailapi.MailGoogleComScope
	default:
		panic("unknown scope")
	}
}

// NewService authenticates against the local credential directory and
// returns a Gmail API service. localcred chooses scopes based on what
// the binary requests on first run.
func NewService(ctx context.Context, cfgDir string, scope Scope) (*gmailapi.Service, error) {
	return (localcred.Provider{}).ServiceWithScopes(ctx, cfgDir, scope.oauthScope())
}

// NewGmailClient authenticates and wraps the service in our narrow
// client interface.
func NewGmailClient(ctx context.Context, cfgDir string, scope Scope) (gc.Client, error) {
	svc, err := NewService(ctx, cfgDir, scope)
	if err != nil {
		return nil, err
	}
	return NewGoogleAPIClient(svc), nil
}

func DefaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
