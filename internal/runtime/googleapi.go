// Package runtime adapts the Google Gmail API client to the narrow
// interfaces the rest of simplegmail consumes.
package runtime

import (
	"context"
	"fmt"

	gmailapi "google.golang.org/api/gmail/v1"

	gc "github.com/misteral/simplegmail/internal/gmail"
)

const userID = "me"

type googleClient struct{ svc *gmailapi.Service }

// NewGoogleAPIClient wraps a *gmail.Service in the gc.Client interface.
func NewGoogleAPIClient(svc *gmailapi.Service) gc.Client { return &googleClient{svc} }

func (g *googleClient) List(ctx context.Context, q gc.ListQuery, pageToken string) (gc.ListPage, error) {
	call := g.svc.Users.Messages.List(userID)
	if q.Query != "" {
		call = call.Q(q.Query)
	}
	if len(q.LabelIDs) > 0 {
		call = call.LabelIds(q.LabelIDs...)
	}
	if q.IncludeSpamTrash {
		call = call.IncludeSpamTrash(true)
	}
	if q.PageSize > 0 {
		call = call.MaxResults(int64(q.PageSize))
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	res, err := call.Context(ctx).Do()
	if err != nil {
		return gc.ListPage{}, fmt.Errorf("list messages: %w", err)
	}
	page := gc.ListPage{NextPageToken: res.NextPageToken}
	for _, m := range res.Messages {
		page.Refs = append(page.Refs, gc.MessageRef{ID: m.Id, ThreadID: m.ThreadId})
	}
	return page, nil
}

func (g *googleClient) GetMessage(ctx context.Context, id string) (*gc.Message, error) {
	msg, err := g.svc.Users.Messages.Get(userID, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}
	return &gc.Message{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		LabelIDs: msg.LabelIds,
		Snippet:  msg.Snippet,
		Payload:  toPayload(msg.Payload),
	}, nil
}

func (g *googleClient) GetThread(ctx context.Context, threadID string) ([]gc.MessageRef, error) {
	t, err := g.svc.Users.Threads.Get(userID, threadID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get thread %s: %w", threadID, err)
	}
	var refs []gc.MessageRef
	for _, m := range t.Messages {
		refs = append(refs, gc.MessageRef{ID: m.Id, ThreadID: m.ThreadId})
	}
	return refs, nil
}

func (g *googleClient) GetAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	res, err := g.svc.Users.Messages.Attachments.Get(userID, messageID, attachmentID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get attachment %s of message %s: %w", attachmentID, messageID, err)
	}
	data, err := gc.DecodeBase64URL(res.Data)
	if err != nil {
		return nil, fmt.Errorf("decode attachment %s of message %s: %w", attachmentID, messageID, err)
	}
	return data, nil
}

func (g *googleClient) ModifyLabels(ctx context.Context, messageID string, add, remove []string) ([]string, error) {
	req := &gmailapi.ModifyMessageRequest{}
	if len(add) > 0 {
		req.AddLabelIds = add
	}
	if len(remove) > 0 {
		req.RemoveLabelIds = remove
	}
	res, err := g.svc.Users.Messages.Modify(userID, messageID, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("modify labels of message %s: %w", messageID, err)
	}
	return res.LabelIds, nil
}

func (g *googleClient) Trash(ctx context.Context, messageID string) ([]string, error) {
	res, err := g.svc.Users.Messages.Trash(userID, messageID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("trash message %s: %w", messageID, err)
	}
	return res.LabelIds, nil
}

func (g *googleClient) Untrash(ctx context.Context, messageID string) ([]string, error) {
	res, err := g.svc.Users.Messages.Untrash(userID, messageID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("untrash message %s: %w", messageID, err)
	}
	return res.LabelIds, nil
}

func (g *googleClient) ListLabels(ctx context.Context) ([]gc.Label, error) {
	res, err := g.svc.Users.Labels.List(userID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	labels := make([]gc.Label, 0, len(res.Labels))
	for _, l := range res.Labels {
		labels = append(labels, gc.Label{ID: l.Id, Name: l.Name})
	}
	return labels, nil
}

func (g *googleClient) CreateLabel(ctx context.Context, name string) (gc.Label, error) {
	created, err := g.svc.Users.Labels.Create(userID, &gmailapi.Label{Name: name}).Context(ctx).Do()
	if err != nil {
		return gc.Label{}, fmt.Errorf("create label %q: %w", name, err)
	}
	return gc.Label{ID: created.Id, Name: created.Name}, nil
}

func (g *googleClient) DeleteLabel(ctx context.Context, id string) error {
	if err := g.svc.Users.Labels.Delete(userID, id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete label %s: %w", id, err)
	}
	return nil
}

func (g *googleClient) Send(ctx context.Context, raw string, threadID string) (gc.MessageRef, error) {
	msg := &gmailapi.Message{Raw: raw}
	if threadID != "" {
		msg.ThreadId = threadID
	}
	sent, err := g.svc.Users.Messages.Send(userID, msg).Context(ctx).Do()
	if err != nil {
		return gc.MessageRef{}, fmt.Errorf("send message: %w", err)
	}
	return gc.MessageRef{ID: sent.Id, ThreadID: sent.ThreadId}, nil
}

func (g *googleClient) GetAlias(ctx context.Context, sendAsEmail string) (gc.Alias, error) {
	res, err := g.svc.Users.Settings.SendAs.Get(userID, sendAsEmail).Context(ctx).Do()
	if err != nil {
		return gc.Alias{}, fmt.Errorf("get alias %s: %w", sendAsEmail, err)
	}
	return gc.Alias{
		SendAsEmail: res.SendAsEmail,
		DisplayName: res.DisplayName,
		ReplyTo:     res.ReplyToAddress,
		Signature:   res.Signature,
		IsDefault:   res.IsDefault,
	}, nil
}

func toPayload(p *gmailapi.MessagePart) *gc.Payload {
	if p == nil {
		return nil
	}
	out := &gc.Payload{
		MimeType: p.MimeType,
		Filename: p.Filename,
	}
	if p.Body != nil {
		out.Body = gc.Body{
			AttachmentID: p.Body.AttachmentId,
			Size:         p.Body.Size,
			Data:         p.Body.Data,
		}
	}
	for _, h := range p.Headers {
		out.Headers = append(out.Headers, gc.Header{Name: h.Name, Value: h.Value})
	}
	for _, child := range p.Parts {
		out.Parts = append(out.Parts, toPayload(child))
	}
	return out
}

var _ gc.Client = (*googleClient)(nil)
