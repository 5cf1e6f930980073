package gmail

import "context"

// Client is the narrow Gmail surface required by simplegmail.
type Client interface {
	List(ctx context.Context, q ListQuery, pageToken string) (ListPage, error)
	GetMessage(ctx context.Context, id string) (*Message, error)
	GetThread(ctx context.Context, threadID string) ([]MessageRef, error)
	GetAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error)
	ModifyLabels(ctx context.Context, messageID string, add, remove []string) ([]string, error)
	Trash(ctx context.Context, messageID string) ([]string, error)
	Untrash(ctx context.Context, messageID string) ([]string, error)
	ListLabels(ctx context.Context) ([]Label, error)
	CreateLabel(ctx context.Context, name string) (Label, error)
	DeleteLabel(ctx context.Context, id string) error
	Send(ctx context.Context, raw string, threadID string) (MessageRef, error)
	GetAlias(ctx context.Context, sendAsEmail string) (Alias, error)
}

// Factory builds a fresh Client from the same credential. The batch
// fetcher gives each worker its own client because the underlying HTTP
// transport carries no cross-goroutine safety contract.
type Factory interface {
	NewClient(ctx context.Context) (Client, error)
}
