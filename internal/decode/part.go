// Package decode turns a message's wire payload tree into a flat,
// ordered set of typed parts, and folds those parts into one logical
// message body.
package decode

import (
	"context"
	"fmt"
)

// PartKind tags the variant of a Part.
type PartKind int

const (
	PartPlain PartKind = iota
	PartHTML
	PartAttachment
)

// Part is one decoded element of a message: inline plain text, inline
// HTML, or an attachment leaf. Exactly one variant applies.
type Part struct {
	Kind PartKind

	// Body holds the decoded text for PartPlain and PartHTML.
	Body string

	// Attachment fields, set only for PartAttachment. Data stays nil
	// until the attachment content is resolved.
	AttachmentID string
	Filename     string
	MimeType     string
	Data         []byte
}

// UnknownFilename is assigned to attachment leaves that carry no
// filename of their own.
const UnknownFilename = "unknown"

// AttachmentPolicy controls whether and when attachment content is
// retrieved during decoding.
type AttachmentPolicy int

const (
	// AttachmentsIgnore drops attachment leaves entirely.
	AttachmentsIgnore AttachmentPolicy = iota
	// AttachmentsReference keeps attachment descriptors without data.
	AttachmentsReference
	// AttachmentsDownload resolves attachment data during decoding.
	AttachmentsDownload
)

func (p AttachmentPolicy) String() string {
	switch p {
	case AttachmentsIgnore:
		return "ignore"
	case AttachmentsReference:
		return "reference"
	case AttachmentsDownload:
		return "download"
	default:
		return fmt.Sprintf("AttachmentPolicy(%d)", int(p))
	}
}

// ParseAttachmentPolicy maps the flag spelling to a policy.
func ParseAttachmentPolicy(s string) (AttachmentPolicy, error) {
	switch s {
	case "ignore":
		return AttachmentsIgnore, nil
	case "reference":
		return AttachmentsReference, nil
	case "download":
		return AttachmentsDownload, nil
	default:
		return 0, fmt.Errorf("unknown attachment policy %q (want ignore, reference or download)", s)
	}
}

// AttachmentFetcher retrieves the decoded bytes of an attachment that
// is not inlined in the payload.
type AttachmentFetcher func(ctx context.Context, attachmentID string) ([]byte, error)
