package compose

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/emersion/go-message"

	"github.com/misteral/simplegmail/internal/gmail"
	msgmodel "github.com/misteral/simplegmail/internal/message"
)

type stubClient struct {
	gmail.Client

	signature  string
	aliasCalls []string

	sentRaw      string
	sentThreadID string
	sendErr      error
}

func (s *stubClient) GetAlias(_ context.Context, sendAsEmail string) (gmail.Alias, error) {
	s.aliasCalls = append(s.aliasCalls, sendAsEmail)
	return gmail.Alias{SendAsEmail: sendAsEmail, Signature: s.signature}, nil
}

func (s *stubClient) Send(_ context.Context, raw string, threadID string) (gmail.MessageRef, error) {
	if s.sendErr != nil {
		return gmail.MessageRef{}, s.sendErr
	}
	s.sentRaw = raw
	s.sentThreadID = threadID
	return gmail.MessageRef{ID: "sent-1", ThreadID: threadID}, nil
}

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sentEntity(t *testing.T, stub *stubClient) *message.Entity {
	t.Helper()
	raw, err := gmail.DecodeBase64URL(stub.sentRaw)
	if err != nil {
		t.Fatalf("decode sent raw: %v", err)
	}
	e, err := message.Read(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("read sent message: %v", err)
	}
	return e
}

func collectBodies(t *testing.T, e *message.Entity) map[string]string {
	t.Helper()
	out := map[string]string{}
	var walk func(e *message.Entity)
	walk = func(e *message.Entity) {
		mr := e.MultipartReader()
		if mr == nil {
			ct, _, _ := e.Header.ContentType()
			b, err := io.ReadAll(e.Body)
			if err != nil {
				t.Fatalf("read part: %v", err)
			}
			out[ct] = string(b)
			return
		}
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				return
			}
			if err != nil {
				t.Fatalf("next part: %v", err)
			}
			walk(p)
		}
	}
	walk(e)
	return out
}

func TestSendAppendsSignatureToHTMLOnly(t *testing.T) {
	stub := &stubClient{signature: "<b>Jane, Example Corp</b>"}
	svc := NewService(stub, slogDiscard())

	_, err := svc.Send(context.Background(), Outgoing{
		Sender:    "Jane Doe <jane@example.com>",
		Recipient: "r@example.com",
		Subject:   "hello",
		Plain:     "plain body",
		HTML:      "<p>html body</p>",
		Signature: true,
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if len(stub.aliasCalls) != 1 || stub.aliasCalls[0] != "jane@example.com" {
		t.Fatalf("alias lookups %v", stub.aliasCalls)
	}

	bodies := collectBodies(t, sentEntity(t, stub))
	if !strings.Contains(bodies["text/html"], "<p>html body</p><br /><br /><b>Jane, Example Corp</b>") {
		t.Fatalf("html body %q missing signature", bodies["text/html"])
	}
	// The plain body stays untouched: signature injection is HTML-only.
	if bodies["text/plain"] != "plain body" {
		t.Fatalf("plain body %q was altered", bodies["text/plain"])
	}
}

func TestSendSignatureCreatesHTMLBody(t *testing.T) {
	stub := &stubClient{signature: "<i>sig</i>"}
	svc := NewService(stub, slogDiscard())

	_, err := svc.Send(context.Background(), Outgoing{
		Sender:    "jane@example.com",
		Recipient: "r@example.com",
		Plain:     "only plain",
		Signature: true,
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	bodies := collectBodies(t, sentEntity(t, stub))
	if !strings.Contains(bodies["text/html"], "<i>sig</i>") {
		t.Fatalf("html body %q, want created body carrying the signature", bodies["text/html"])
	}
}

func TestSendSignatureRequiresBody(t *testing.T) {
	stub := &stubClient{signature: "<i>sig</i>"}
	svc := NewService(stub, slogDiscard())

	_, err := svc.Send(context.Background(), Outgoing{
		Sender:    "jane@example.com",
		Recipient: "r@example.com",
		Signature: true,
	})
	if err == nil {
		t.Fatal("expected error for signature without body")
	}
	if len(stub.aliasCalls) != 0 {
		t.Fatalf("unexpected alias lookups %v", stub.aliasCalls)
	}
}

func TestSendPassesThreadID(t *testing.T) {
	stub := &stubClient{}
	svc := NewService(stub, slogDiscard())

	ref, err := svc.Send(context.Background(), Outgoing{
		Sender:    "s@example.com",
		Recipient: "r@example.com",
		Plain:     "x",
		ThreadID:  "t42",
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if stub.sentThreadID != "t42" || ref.ThreadID != "t42" {
		t.Fatalf("thread id %q / %q", stub.sentThreadID, ref.ThreadID)
	}
}

func TestReplyQuotesOriginal(t *testing.T) {
	stub := &stubClient{}
	svc := NewService(stub, slogDiscard())

	orig := &msgmodel.Message{
		ID:        "m7",
		ThreadID:  "t7",
		Sender:    "Jane Doe <jane@example.com>",
		Recipient: "me@example.com",
		Subject:   "status",
		Date:      "2024-03-12T10:30:00Z",
		Plain:     "original plain",
		HTML:      "<p>original html</p>",
	}

	ref, err := svc.Reply(context.Background(), orig, ReplyOptions{Text: "thanks!"})
	if err != nil {
		t.Fatalf("reply failed: %v", err)
	}
	if ref.ThreadID != "t7" || stub.sentThreadID != "t7" {
		t.Fatalf("thread id %q", stub.sentThreadID)
	}

	e := sentEntity(t, stub)
	if got := e.Header.Get("Subject"); got != "Re: status" {
		t.Fatalf("subject %q", got)
	}
	if e.Header.Get("In-Reply-To") != "m7" || e.Header.Get("References") != "m7" {
		t.Fatalf("reply headers not set")
	}

	bodies := collectBodies(t, e)
	if !strings.Contains(bodies["text/plain"], "thanks!") || !strings.Contains(bodies["text/plain"], "original plain") {
		t.Fatalf("plain reply %q", bodies["text/plain"])
	}
	if !strings.Contains(bodies["text/html"], "original html") {
		t.Fatalf("html reply %q", bodies["text/html"])
	}
}
