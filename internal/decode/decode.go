package decode

import (
	"context"
	"fmt"
	"strings"

	"github.com/misteral/simplegmail/internal/gmail"
)

// Decode recursively evaluates a payload node into its ordered parts
// (depth-first, pre-order). Leaf kinds other than text/plain, text/html
// and attachments are silently skipped. fetch is consulted only when
// policy is AttachmentsDownload and the node carries no inline data; a
// fetch failure propagates unchanged as a transport error.
func Decode(ctx context.Context, p *gmail.Payload, policy AttachmentPolicy, fetch AttachmentFetcher) ([]Part, error) {
	if p == nil {
		return nil, nil
	}

	if p.Body.AttachmentID != "" {
		return decodeAttachment(ctx, p, policy, fetch)
	}

	switch {
	case p.MimeType == "text/html":
		data, err := gmail.DecodeBase64URL(p.Body.Data)
		if err != nil {
			return nil, fmt.Errorf("decode html part: %w", err)
		}
		body, err := sanitizeHTML(data)
		if err != nil {
			return nil, fmt.Errorf("sanitize html part: %w", err)
		}
		return []Part{{Kind: PartHTML, Body: body}}, nil

	case p.MimeType == "text/plain":
		data, err := gmail.DecodeBase64URL(p.Body.Data)
		if err != nil {
			return nil, fmt.Errorf("decode plain part: %w", err)
		}
		return []Part{{Kind: PartPlain, Body: string(data)}}, nil

	case strings.HasPrefix(p.MimeType, "multipart"):
		var parts []Part
		for _, child := range p.Parts {
			decoded, err := Decode(ctx, child, policy, fetch)
			if err != nil {
				return nil, err
			}
			parts = append(parts, decoded...)
		}
		return parts, nil
	}

	return nil, nil
}

func decodeAttachment(ctx context.Context, p *gmail.Payload, policy AttachmentPolicy, fetch AttachmentFetcher) ([]Part, error) {
	if policy == AttachmentsIgnore {
		return nil, nil
	}

	filename := p.Filename
	if filename == "" {
		filename = UnknownFilename
	}
	part := Part{
		Kind:         PartAttachment,
		AttachmentID: p.Body.AttachmentID,
		Filename:     filename,
		MimeType:     p.MimeType,
	}
	if policy == AttachmentsReference {
		return []Part{part}, nil
	}

	// AttachmentsDownload: prefer inline data, fetch otherwise.
	if p.Body.Data != "" {
		data, err := gmail.DecodeBase64URL(p.Body.Data)
		if err != nil {
			return nil, fmt.Errorf("decode inline attachment %s: %w", part.AttachmentID, err)
		}
		part.Data = data
		return []Part{part}, nil
	}

	data, err := fetch(ctx, part.AttachmentID)
	if err != nil {
		return nil, err
	}
	part.Data = data
	return []Part{part}, nil
}
