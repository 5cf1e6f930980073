// Package message holds the application-level model for fetched mail:
// the assembled message and its attachment handles.
package message

import "github.com/misteral/simplegmail/internal/gmail"

// Message is one fully materialized email. Instances are built per
// fetch and never mutated afterwards; label changes are made through
// the fetch service, which returns fresh label snapshots.
type Message struct {
	ID        string
	ThreadID  string
	Sender    string
	Recipient string
	CC        []string
	BCC       []string
	Subject   string

	// Date is the parsed Date header rendered in RFC 3339, or the raw
	// header value when it does not parse.
	Date    string
	Snippet string

	Plain    string
	HasPlain bool
	HTML     string
	HasHTML  bool

	// Labels are the message's label ids expanded against the
	// account's label set at fetch time.
	Labels      []gmail.Label
	Attachments []*Attachment

	// Headers carries every payload header verbatim, keyed by the
	// header name as sent.
	Headers map[string]string
}

// HasAttachments reports whether any attachment parts were decoded.
func (m *Message) HasAttachments() bool { return len(m.Attachments) > 0 }

// LabelIDs returns the ids of the message's labels.
func (m *Message) LabelIDs() []string {
	ids := make([]string, 0, len(m.Labels))
	for _, l := range m.Labels {
		ids = append(ids, l.ID)
	}
	return ids
}
