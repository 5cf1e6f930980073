package fetch

import (
	"context"
	"fmt"

	"github.com/misteral/simplegmail/internal/gmail"
)

// LabelInvariantError reports a label mutation whose response does not
// reflect the request: requested additions absent, or requested
// removals still present. It is distinct from a transport failure.
type LabelInvariantError struct {
	MessageID string
	Missing   []string
	Lingering []string
}

func (e *LabelInvariantError) Error() string {
	return fmt.Sprintf("label state of message %s does not reflect request (missing %v, lingering %v)",
		e.MessageID, e.Missing, e.Lingering)
}

// ModifyLabels applies the requested label changes and returns the
// message's resulting label ids as a fresh snapshot; the message model
// itself is never mutated. A response missing a requested change
// yields a *LabelInvariantError.
func (s *Service) ModifyLabels(ctx context.Context, messageID string, add, remove []string) ([]string, error) {
	got, err := s.Client.ModifyLabels(ctx, messageID, add, remove)
	if err != nil {
		return nil, err
	}
	if err := checkLabelInvariant(messageID, add, remove, got); err != nil {
		return nil, err
	}
	return got, nil
}

// Trash moves the message to the trash and returns the new label ids.
func (s *Service) Trash(ctx context.Context, messageID string) ([]string, error) {
	got, err := s.Client.Trash(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if err := checkLabelInvariant(messageID, []string{gmail.LabelTrash}, nil, got); err != nil {
		return nil, err
	}
	return got, nil
}

// Untrash removes the message from the trash and returns the new label
// ids.
func (s *Service) Untrash(ctx context.Context, messageID string) ([]string, error) {
	got, err := s.Client.Untrash(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if err := checkLabelInvariant(messageID, nil, []string{gmail.LabelTrash}, got); err != nil {
		return nil, err
	}
	return got, nil
}

// MarkRead removes the UNREAD label.
func (s *Service) MarkRead(ctx context.Context, messageID string) ([]string, error) {
	return s.ModifyLabels(ctx, messageID, nil, []string{gmail.LabelUnread})
}

// MarkUnread adds the UNREAD label.
func (s *Service) MarkUnread(ctx context.Context, messageID string) ([]string, error) {
	return s.ModifyLabels(ctx, messageID, []string{gmail.LabelUnread}, nil)
}

// Star adds the STARRED label.
func (s *Service) Star(ctx context.Context, messageID string) ([]string, error) {
	return s.ModifyLabels(ctx, messageID, []string{gmail.LabelStarred}, nil)
}

// Unstar removes the STARRED label.
func (s *Service) Unstar(ctx context.Context, messageID string) ([]string, error) {
	return s.ModifyLabels(ctx, messageID, nil, []string{gmail.LabelStarred})
}

// MarkImportant adds the IMPORTANT label.
func (s *Service) MarkImportant(ctx context.Context, messageID string) ([]string, error) {
	return s.ModifyLabels(ctx, messageID, []string{gmail.LabelImportant}, nil)
}

// MarkNotImportant removes the IMPORTANT label.
func (s *Service) MarkNotImportant(ctx context.Context, messageID string) ([]string, error) {
	return s.ModifyLabels(ctx, messageID, nil, []string{gmail.LabelImportant})
}

// MarkSpam adds the SPAM label.
func (s *Service) MarkSpam(ctx context.Context, messageID string) ([]string, error) {
	return s.ModifyLabels(ctx, messageID, []string{gmail.LabelSpam}, nil)
}

// MarkNotSpam removes the SPAM label.
func (s *Service) MarkNotSpam(ctx context.Context, messageID string) ([]string, error) {
	return s.ModifyLabels(ctx, messageID, nil, []string{gmail.LabelSpam})
}

// Archive removes the message from the inbox.
func (s *Service) Archive(ctx context.Context, messageID string) ([]string, error) {
	return s.ModifyLabels(ctx, messageID, nil, []string{gmail.LabelInbox})
}

// MoveToInbox returns an archived message to the inbox.
func (s *Service) MoveToInbox(ctx context.Context, messageID string) ([]string, error) {
	return s.ModifyLabels(ctx, messageID, []string{gmail.LabelInbox}, nil)
}

// MoveFromInbox moves the message from the inbox into another label.
func (s *Service) MoveFromInbox(ctx context.Context, messageID, toLabelID string) ([]string, error) {
	return s.ModifyLabels(ctx, messageID, []string{toLabelID}, []string{gmail.LabelInbox})
}

func checkLabelInvariant(messageID string, add, remove, got []string) error {
	present := make(map[string]bool, len(got))
	for _, id := range got {
		present[id] = true
	}
	var missing, lingering []string
	for _, id := range add {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	for _, id := range remove {
		if present[id] {
			lingering = append(lingering, id)
		}
	}
	if len(missing) > 0 || len(lingering) > 0 {
		return &LabelInvariantError{MessageID: messageID, Missing: missing, Lingering: lingering}
	}
	return nil
}
