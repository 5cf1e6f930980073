package decode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/misteral/simplegmail/internal/gmail"
)

func b64(s string) string { return gmail.EncodeBase64URL([]byte(s)) }

func plainNode(body string) *gmail.Payload {
	return &gmail.Payload{MimeType: "text/plain", Body: gmail.Body{Data: b64(body)}}
}

func htmlNode(body string) *gmail.Payload {
	return &gmail.Payload{MimeType: "text/html", Body: gmail.Body{Data: b64(body)}}
}

func attachNode(id, filename, mimeType, inline string) *gmail.Payload {
	return &gmail.Payload{
		MimeType: mimeType,
		Filename: filename,
		Body:     gmail.Body{AttachmentID: id, Data: inline},
	}
}

func container(mimeType string, parts ...*gmail.Payload) *gmail.Payload {
	return &gmail.Payload{MimeType: mimeType, Parts: parts}
}

func noFetch(t *testing.T) AttachmentFetcher {
	t.Helper()
	return func(context.Context, string) ([]byte, error) {
		t.Fatal("unexpected attachment fetch")
		return nil, nil
	}
}

func TestDecodeNestedMultipartOrder(t *testing.T) {
	tree := container("multipart/mixed",
		plainNode("one"),
		container("multipart/alternative",
			plainNode("two"),
			htmlNode("<p>three</p>"),
		),
		plainNode("four"),
	)

	parts, err := Decode(context.Background(), tree, AttachmentsReference, noFetch(t))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	want := []Part{
		{Kind: PartPlain, Body: "one"},
		{Kind: PartPlain, Body: "two"},
		{Kind: PartHTML, Body: "<p>three</p>"},
		{Kind: PartPlain, Body: "four"},
	}
	if len(parts) != len(want) {
		t.Fatalf("got %d parts, want %d", len(parts), len(want))
	}
	for i := range want {
		if parts[i].Kind != want[i].Kind || parts[i].Body != want[i].Body {
			t.Fatalf("part %d = {%v %q}, want {%v %q}",
				i, parts[i].Kind, parts[i].Body, want[i].Kind, want[i].Body)
		}
	}

	content := Assemble(parts)
	if content.Plain != "one\ntwo\nfour" {
		t.Fatalf("plain body %q", content.Plain)
	}
	if content.HTML != "<p>three</p>" {
		t.Fatalf("html body %q", content.HTML)
	}
}

func TestDecodeMixedScenario(t *testing.T) {
	tree := container("multipart/mixed",
		plainNode("hi"),
		htmlNode("<p>hi</p>"),
		attachNode("A1", "", "application/pdf", ""),
	)

	parts, err := Decode(context.Background(), tree, AttachmentsReference, noFetch(t))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	content := Assemble(parts)
	if content.Plain != "hi" {
		t.Fatalf("plain body %q, want %q", content.Plain, "hi")
	}
	if !strings.Contains(content.HTML, "hi") {
		t.Fatalf("html body %q does not contain %q", content.HTML, "hi")
	}
	if len(content.Attachments) != 1 {
		t.Fatalf("got %d attachments, want 1", len(content.Attachments))
	}
	att := content.Attachments[0]
	if att.Filename != UnknownFilename {
		t.Fatalf("filename %q, want %q", att.Filename, UnknownFilename)
	}
	if att.AttachmentID != "A1" || att.Data != nil {
		t.Fatalf("attachment = %+v, want id A1 with nil data", att)
	}
}

func TestDecodeAttachmentPolicies(t *testing.T) {
	node := attachNode("A9", "report.pdf", "application/pdf", "")

	t.Run("ignore", func(t *testing.T) {
		parts, err := Decode(context.Background(), node, AttachmentsIgnore, noFetch(t))
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if len(parts) != 0 {
			t.Fatalf("got %d parts, want 0", len(parts))
		}
	})

	t.Run("reference", func(t *testing.T) {
		parts, err := Decode(context.Background(), node, AttachmentsReference, noFetch(t))
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if len(parts) != 1 || parts[0].Data != nil {
			t.Fatalf("want one data-less part, got %+v", parts)
		}
		if parts[0].Filename != "report.pdf" || parts[0].MimeType != "application/pdf" {
			t.Fatalf("descriptor = %+v", parts[0])
		}
	})

	t.Run("download-fetches", func(t *testing.T) {
		var fetched []string
		fetch := func(_ context.Context, id string) ([]byte, error) {
			fetched = append(fetched, id)
			return []byte("binary"), nil
		}
		parts, err := Decode(context.Background(), node, AttachmentsDownload, fetch)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if len(fetched) != 1 || fetched[0] != "A9" {
			t.Fatalf("fetched %v, want [A9]", fetched)
		}
		if string(parts[0].Data) != "binary" {
			t.Fatalf("data %q", parts[0].Data)
		}
	})

	t.Run("download-prefers-inline", func(t *testing.T) {
		inline := attachNode("A9", "report.pdf", "application/pdf", b64("inline-bytes"))
		parts, err := Decode(context.Background(), inline, AttachmentsDownload, noFetch(t))
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if string(parts[0].Data) != "inline-bytes" {
			t.Fatalf("data %q", parts[0].Data)
		}
	})
}

func TestDecodeFetchErrorPropagates(t *testing.T) {
	sentinel := errors.New("transport down")
	fetch := func(context.Context, string) ([]byte, error) { return nil, sentinel }
	node := attachNode("A1", "f.bin", "application/octet-stream", "")

	_, err := Decode(context.Background(), node, AttachmentsDownload, fetch)
	if !errors.Is(err, sentinel) {
		t.Fatalf("got %v, want the transport error", err)
	}
}

func TestDecodeSkipsUnknownLeafKinds(t *testing.T) {
	tree := container("multipart/mixed",
		&gmail.Payload{MimeType: "image/png", Body: gmail.Body{Data: b64("pixels")}},
		plainNode("kept"),
	)
	parts, err := Decode(context.Background(), tree, AttachmentsReference, noFetch(t))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(parts) != 1 || parts[0].Body != "kept" {
		t.Fatalf("parts = %+v, want only the plain part", parts)
	}
}

func TestDecodeEmptyContainer(t *testing.T) {
	parts, err := Decode(context.Background(), container("multipart/mixed"), AttachmentsReference, noFetch(t))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(parts) != 0 {
		t.Fatalf("got %d parts, want 0", len(parts))
	}
}

func TestDecodeSanitizesHTMLWrapper(t *testing.T) {
	node := htmlNode("<html><head><title>x</title></head><body><p>hi</p><div>there</div></body></html>")
	parts, err := Decode(context.Background(), node, AttachmentsReference, noFetch(t))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if parts[0].Body != "<p>hi</p><div>there</div>" {
		t.Fatalf("sanitized body %q", parts[0].Body)
	}
}

func TestAssembleJoinsSameKindParts(t *testing.T) {
	content := Assemble([]Part{
		{Kind: PartHTML, Body: "<p>a</p>"},
		{Kind: PartPlain, Body: "x"},
		{Kind: PartHTML, Body: "<p>b</p>"},
		{Kind: PartPlain, Body: "y"},
	})
	if content.Plain != "x\ny" {
		t.Fatalf("plain %q", content.Plain)
	}
	if content.HTML != "<p>a</p><br/><p>b</p>" {
		t.Fatalf("html %q", content.HTML)
	}
}

func TestParseAttachmentPolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    AttachmentPolicy
		wantErr bool
	}{
		{input: "ignore", want: AttachmentsIgnore},
		{input: "reference", want: AttachmentsReference},
		{input: "download", want: AttachmentsDownload},
		{input: "everything", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		tc := tt
		t.Run(fmt.Sprintf("%q", tc.input), func(t *testing.T) {
			got, err := ParseAttachmentPolicy(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}
