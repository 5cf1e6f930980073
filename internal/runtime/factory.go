package runtime

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	gc "github.com/misteral/simplegmail/internal/gmail"
)

// LocalCredFactory builds clients from the gmailctl credential
// directory. Each call authenticates a fresh service with its own HTTP
// transport, so clients handed out are safe to use from separate
// goroutines.
type LocalCredFactory struct {
	CfgDir string
	Scope  Scope
}

func (f LocalCredFactory) NewClient(ctx context.Context) (gc.Client, error) {
	return NewGmailClient(ctx, f.CfgDir, f.Scope)
}

// TokenFactory builds clients from an OAuth2 token held in memory, for
// embedding simplegmail where the token lifecycle is managed elsewhere.
type TokenFactory struct {
	Config *oauth2.Config
	Token  *oauth2.Token
}

func (f TokenFactory) NewClient(ctx context.Context) (gc.Client, error) {
	svc, err := gmailapi.NewService(ctx, option.WithHTTPClient(f.Config.Client(ctx, f.Token)))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return NewGoogleAPIClient(svc), nil
}

var (
	_ gc.Factory = LocalCredFactory{}
	_ gc.Factory = TokenFactory{}
)
