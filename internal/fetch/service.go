// Package fetch materializes messages from the remote service: single
// gets, query searches, thread pulls and the bounded-parallel batch
// fetcher, plus label mutation on fetched messages.
package fetch

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/mail"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/misteral/simplegmail/internal/decode"
	"github.com/misteral/simplegmail/internal/gmail"
	"github.com/misteral/simplegmail/internal/message"
	"github.com/misteral/simplegmail/internal/rate"
)

// Worker sizing, empirically chosen to balance throughput against
// upstream rate limiting.
const (
	targetPerWorker = 20
	maxWorkers      = 24
)

// Service fetches and mutates messages.
type Service struct {
	// Client serves the single-threaded paths: listing, label lookup,
	// label mutation, single gets.
	Client gmail.Client
	// Factory hands each batch worker a private client. The underlying
	// HTTP client carries no cross-goroutine safety contract, so
	// workers never share one.
	Factory gmail.Factory
	// Limiter, when set, gates every per-message get.
	Limiter rate.Limiter
	Logger  *slog.Logger
	// UserID is the account address attachment handles are bound to.
	UserID string
}

// NewService constructs a Service with sane defaults.
func NewService(client gmail.Client, factory gmail.Factory, limiter rate.Limiter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Service{
		Client:  client,
		Factory: factory,
		Limiter: limiter,
		Logger:  logger,
		UserID:  "me",
	}
}

// plan returns the worker count and per-worker slice size for n refs.
func plan(n int) (numWorkers, batchSize int) {
	numWorkers = (n + targetPerWorker - 1) / targetPerWorker
	if numWorkers > maxWorkers {
		numWorkers = maxWorkers
	}
	batchSize = (n + numWorkers - 1) / numWorkers
	return numWorkers, batchSize
}

// FetchAll materializes every referenced message, preserving input
// order. Refs are partitioned into contiguous slices, one worker per
// slice, each with a private client and a private result slot; slots
// are concatenated in partition order afterwards, so no cross-worker
// locking is needed. The first failing worker aborts the whole batch
// and its error is returned.
func (s *Service) FetchAll(ctx context.Context, refs []gmail.MessageRef, policy decode.AttachmentPolicy) ([]*message.Message, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	// One label listing per batch; every message build shares it.
	labels, err := s.labelsByID(ctx)
	if err != nil {
		return nil, err
	}

	numWorkers, batchSize := plan(len(refs))
	slots := make([][]*message.Message, numWorkers)

	g, gctx := errgroup.WithContext(ctx)
	spawned := 0
	for w := 0; w < numWorkers; w++ {
		start := w * batchSize
		if start >= len(refs) {
			// Capped worker counts can round batchSize up past the
			// input; trailing workers with no refs are not spawned.
			break
		}
		spawned++
		end := min(start+batchSize, len(refs))
		batch := refs[start:end]
		slot := &slots[w]
		g.Go(func() error {
			client, err := s.Factory.NewClient(gctx)
			if err != nil {
				return fmt.Errorf("create worker client: %w", err)
			}
			out := make([]*message.Message, 0, len(batch))
			for _, ref := range batch {
				if s.Limiter != nil {
					if err := s.Limiter.Wait(gctx); err != nil {
						return err
					}
				}
				m, err := s.buildMessage(gctx, client, ref, policy, labels)
				if err != nil {
					return err
				}
				out = append(out, m)
			}
			*slot = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	msgs := make([]*message.Message, 0, len(refs))
	for _, slot := range slots {
		msgs = append(msgs, slot...)
	}
	s.Logger.Info("fetched messages", "count", len(msgs), "workers", spawned)
	return msgs, nil
}

// Get materializes a single message.
func (s *Service) Get(ctx context.Context, ref gmail.MessageRef, policy decode.AttachmentPolicy) (*message.Message, error) {
	labels, err := s.labelsByID(ctx)
	if err != nil {
		return nil, err
	}
	return s.buildMessage(ctx, s.Client, ref, policy, labels)
}

// Search lists every message matching q, following pagination to the
// end, and batch-fetches the results.
func (s *Service) Search(ctx context.Context, q gmail.ListQuery, policy decode.AttachmentPolicy) ([]*message.Message, error) {
	var refs []gmail.MessageRef
	pageToken := ""
	for {
		if s.Limiter != nil {
			if err := s.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		page, err := s.Client.List(ctx, q, pageToken)
		if err != nil {
			return nil, err
		}
		refs = append(refs, page.Refs...)
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}
	return s.FetchAll(ctx, refs, policy)
}

// Thread fetches all messages of one conversation thread.
func (s *Service) Thread(ctx context.Context, threadID string, policy decode.AttachmentPolicy) ([]*message.Message, error) {
	refs, err := s.Client.GetThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	return s.FetchAll(ctx, refs, policy)
}

func (s *Service) labelsByID(ctx context.Context) (map[string]gmail.Label, error) {
	all, err := s.Client.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	byID := make(map[string]gmail.Label, len(all))
	for _, l := range all {
		byID[l.ID] = l
	}
	return byID, nil
}

func (s *Service) buildMessage(ctx context.Context, client gmail.Client, ref gmail.MessageRef, policy decode.AttachmentPolicy, labels map[string]gmail.Label) (*message.Message, error) {
	wire, err := client.GetMessage(ctx, ref.ID)
	if err != nil {
		return nil, err
	}

	fetchData := func(ctx context.Context, attachmentID string) ([]byte, error) {
		return client.GetAttachment(ctx, wire.ID, attachmentID)
	}
	parts, err := decode.Decode(ctx, wire.Payload, policy, fetchData)
	if err != nil {
		return nil, fmt.Errorf("decode message %s: %w", wire.ID, err)
	}
	content := decode.Assemble(parts)

	m := &message.Message{
		ID:       wire.ID,
		ThreadID: wire.ThreadID,
		Snippet:  html.UnescapeString(wire.Snippet),
		Plain:    content.Plain,
		HasPlain: content.HasPlain,
		HTML:     content.HTML,
		HasHTML:  content.HasHTML,
		Headers:  map[string]string{},
	}

	if wire.Payload != nil {
		for _, h := range wire.Payload.Headers {
			switch strings.ToLower(h.Name) {
			case "date":
				m.Date = parseDate(h.Value)
			case "from":
				m.Sender = h.Value
			case "to":
				m.Recipient = h.Value
			case "subject":
				m.Subject = h.Value
			case "cc":
				m.CC = splitAddresses(h.Value)
			case "bcc":
				m.BCC = splitAddresses(h.Value)
			}
			m.Headers[h.Name] = h.Value
		}
	}

	for _, id := range wire.LabelIDs {
		if l, ok := labels[id]; ok {
			m.Labels = append(m.Labels, l)
		} else {
			m.Labels = append(m.Labels, gmail.Label{ID: id})
		}
	}

	for _, part := range content.Attachments {
		m.Attachments = append(m.Attachments, &message.Attachment{
			UserID:    s.UserID,
			MessageID: wire.ID,
			ID:        part.AttachmentID,
			Filename:  part.Filename,
			MimeType:  part.MimeType,
			Data:      part.Data,
		})
	}
	return m, nil
}

// parseDate renders an RFC 2822 style Date header in RFC 3339, falling
// back to the raw value when it does not parse.
func parseDate(value string) string {
	t, err := mail.ParseDate(value)
	if err != nil {
		return value
	}
	return t.Format(time.RFC3339)
}

func splitAddresses(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
