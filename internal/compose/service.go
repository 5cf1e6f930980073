package compose

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"github.com/misteral/simplegmail/internal/gmail"
	"github.com/misteral/simplegmail/internal/message"
)

// signatureSeparator visually separates the body from the appended
// alias signature.
const signatureSeparator = "<br /><br />"

// Service sends composed messages through the remote service.
type Service struct {
	Client gmail.Client
	Logger *slog.Logger
}

// NewService constructs a send service.
func NewService(client gmail.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Service{Client: client, Logger: logger}
}

var bareAddrPattern = regexp.MustCompile(`.+\s<(.+@.+\..+)>`)

// bareAddress extracts the plain address from a `Name <addr>` sender,
// falling back to the input unchanged.
func bareAddress(sender string) string {
	if m := bareAddrPattern.FindStringSubmatch(sender); m != nil {
		return m[1]
	}
	return sender
}

// Send builds and transmits o. When o.Signature is set, the sender
// alias's signature is appended to the HTML body (an HTML body is
// created if none existed); the plain body is deliberately left
// untouched. A send failure is logged with the message context and
// returned unchanged.
func (s *Service) Send(ctx context.Context, o Outgoing) (gmail.MessageRef, error) {
	if o.Signature {
		if o.Plain == "" && o.HTML == "" {
			return gmail.MessageRef{}, fmt.Errorf("signature requested but message has no body")
		}
		addr := bareAddress(o.Sender)
		alias, err := s.Client.GetAlias(ctx, addr)
		if err != nil {
			return gmail.MessageRef{}, fmt.Errorf("look up alias signature for %s: %w", addr, err)
		}
		o.HTML += signatureSeparator + alias.Signature
	}

	wire, err := Build(o)
	if err != nil {
		return gmail.MessageRef{}, err
	}

	ref, err := s.Client.Send(ctx, wire.Raw, wire.ThreadID)
	if err != nil {
		s.Logger.Error("send failed",
			"to", o.Recipient, "subject", o.Subject, "thread_id", o.ThreadID, "error", err)
		return gmail.MessageRef{}, err
	}
	s.Logger.Info("sent message", "id", ref.ID, "to", o.Recipient)
	return ref, nil
}

// ReplyOptions customizes a reply. When Plain or HTML are empty, a
// quoted body is generated from Text and the original message.
type ReplyOptions struct {
	Text            string
	Plain           string
	HTML            string
	Signature       bool
	AttachmentPaths []string
}

// Reply sends a reply to orig within its thread, quoting the original
// bodies unless explicit ones are supplied.
func (s *Service) Reply(ctx context.Context, orig *message.Message, opts ReplyOptions) (gmail.MessageRef, error) {
	htmlBody := opts.HTML
	if htmlBody == "" {
		htmlBody = fmt.Sprintf("%s <br><br>On %s, %s wrote:<br>%s",
			opts.Text, orig.Date, orig.Sender, orig.HTML)
	}
	plainBody := opts.Plain
	if plainBody == "" {
		plainBody = fmt.Sprintf("%s \n\nOn %s, %s wrote:\n%s",
			opts.Text, orig.Date, orig.Sender, orig.Plain)
	}

	return s.Send(ctx, Outgoing{
		Sender:          orig.Recipient,
		Recipient:       orig.Sender,
		Subject:         "Re: " + orig.Subject,
		Plain:           plainBody,
		HTML:            htmlBody,
		AttachmentPaths: opts.AttachmentPaths,
		Signature:       opts.Signature,
		ThreadID:        orig.ThreadID,
		InReplyTo:       orig.ID,
		References:      orig.ID,
	})
}
