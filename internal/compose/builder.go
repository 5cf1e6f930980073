// Package compose assembles wire-ready outgoing messages: a header
// block plus an alternative plain/HTML body, optionally wrapped in a
// mixed container carrying attachments.
package compose

import (
	"bytes"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/emersion/go-message"
	emmail "github.com/emersion/go-message/mail"

	"github.com/misteral/simplegmail/internal/gmail"
)

// Outgoing is the user-supplied content of a message to send. Sender
// and Recipient accept `"Name" <addr>`, `Name <addr>` or a bare
// address. Thread and reply headers are set only when present.
type Outgoing struct {
	Sender          string
	Recipient       string
	Subject         string
	Plain           string
	HTML            string
	CC              []string
	BCC             []string
	AttachmentPaths []string

	// Signature asks the send service to append the account's alias
	// signature to the HTML body. Requires at least one body.
	Signature bool

	ThreadID   string
	InReplyTo  string
	References string
}

// Wire is the transport form of an outgoing message: the URL-safe
// base64 document plus the thread id side channel used when replying.
type Wire struct {
	Raw      string
	ThreadID string
}

// AddressError reports an address string that matches none of the
// accepted shapes.
type AddressError struct {
	Input string
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("address %q is not in \"Name\" <addr>, Name <addr> or bare form", e.Input)
}

var addrPattern = regexp.MustCompile(`^\s*"?([^"<]*?)"?\s*<([^<>\s]+@[^<>\s]+\.[^<>\s]+)>\s*$`)

func parseAddress(s string) (*emmail.Address, error) {
	if m := addrPattern.FindStringSubmatch(s); m != nil {
		return &emmail.Address{Name: strings.TrimSpace(m[1]), Address: m[2]}, nil
	}
	if strings.Contains(s, "@") && !strings.ContainsAny(s, " <>") {
		return &emmail.Address{Address: s}, nil
	}
	return nil, &AddressError{Input: s}
}

func parseAddressList(in []string) ([]*emmail.Address, error) {
	out := make([]*emmail.Address, 0, len(in))
	for _, s := range in {
		a, err := parseAddress(s)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Build constructs the full MIME document for o. The container is
// multipart/mixed when attachments are present, multipart/alternative
// otherwise; the alternative body part holds whichever of plain/HTML
// are non-empty, plain first.
func Build(o Outgoing) (Wire, error) {
	from, err := parseAddress(o.Sender)
	if err != nil {
		return Wire{}, err
	}
	to, err := parseAddress(o.Recipient)
	if err != nil {
		return Wire{}, err
	}
	cc, err := parseAddressList(o.CC)
	if err != nil {
		return Wire{}, err
	}
	bcc, err := parseAddressList(o.BCC)
	if err != nil {
		return Wire{}, err
	}

	var h emmail.Header
	h.SetAddressList("From", []*emmail.Address{from})
	h.SetAddressList("To", []*emmail.Address{to})
	h.SetSubject(o.Subject)
	if len(cc) > 0 {
		h.SetAddressList("Cc", cc)
	}
	if len(bcc) > 0 {
		h.SetAddressList("Bcc", bcc)
	}
	if o.ThreadID != "" {
		h.Set("Thread-Id", o.ThreadID)
	}
	if o.InReplyTo != "" {
		h.Set("In-Reply-To", o.InReplyTo)
	}
	if o.References != "" {
		h.Set("References", o.References)
	}

	mixed := len(o.AttachmentPaths) > 0
	if mixed {
		h.SetContentType("multipart/mixed", nil)
	} else {
		h.SetContentType("multipart/alternative", nil)
	}

	var buf bytes.Buffer
	w, err := message.CreateWriter(&buf, h.Header)
	if err != nil {
		return Wire{}, fmt.Errorf("create message writer: %w", err)
	}

	if mixed {
		var ah message.Header
		ah.SetContentType("multipart/alternative", nil)
		alt, err := w.CreatePart(ah)
		if err != nil {
			return Wire{}, fmt.Errorf("create alternative part: %w", err)
		}
		if err := writeBodies(alt, o); err != nil {
			return Wire{}, err
		}
		if err := alt.Close(); err != nil {
			return Wire{}, fmt.Errorf("close alternative part: %w", err)
		}
		for _, path := range o.AttachmentPaths {
			if err := writeAttachment(w, path); err != nil {
				return Wire{}, err
			}
		}
	} else {
		if err := writeBodies(w, o); err != nil {
			return Wire{}, err
		}
	}
	if err := w.Close(); err != nil {
		return Wire{}, fmt.Errorf("close message: %w", err)
	}

	return Wire{Raw: gmail.EncodeBase64URL(buf.Bytes()), ThreadID: o.ThreadID}, nil
}

func writeBodies(w *message.Writer, o Outgoing) error {
	if o.Plain != "" {
		if err := writeTextPart(w, "plain", o.Plain); err != nil {
			return err
		}
	}
	if o.HTML != "" {
		if err := writeTextPart(w, "html", o.HTML); err != nil {
			return err
		}
	}
	return nil
}

func writeTextPart(w *message.Writer, subtype, body string) error {
	var h message.Header
	h.SetContentType("text/"+subtype, map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "quoted-printable")
	pw, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create text/%s part: %w", subtype, err)
	}
	if _, err := pw.Write([]byte(body)); err != nil {
		return fmt.Errorf("write text/%s part: %w", subtype, err)
	}
	return pw.Close()
}

func writeAttachment(w *message.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read attachment %s: %w", path, err)
	}

	ctype := mime.TypeByExtension(filepath.Ext(path))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	mediaType, params, err := mime.ParseMediaType(ctype)
	if err != nil {
		mediaType, params = "application/octet-stream", nil
	}

	var h message.Header
	h.SetContentType(mediaType, params)
	h.Set("Content-Transfer-Encoding", transferEncodingFor(mediaType))
	h.Set("Content-Disposition", mime.FormatMediaType("attachment",
		map[string]string{"filename": filepath.Base(path)}))

	pw, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create attachment part %s: %w", path, err)
	}
	if _, err := pw.Write(data); err != nil {
		return fmt.Errorf("write attachment part %s: %w", path, err)
	}
	return pw.Close()
}

// transferEncodingFor picks the encoding scheme for a part by its
// top-level media kind: text travels quoted-printable, binary kinds
// travel base64.
func transferEncodingFor(mediaType string) string {
	switch strings.SplitN(mediaType, "/", 2)[0] {
	case "text":
		return "quoted-printable"
	default:
		return "base64"
	}
}
