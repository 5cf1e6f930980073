package gmail

// MessageRef identifies a message within its conversation thread. Both
// identifiers are opaque strings owned by the remote service.
type MessageRef struct {
	ID       string
	ThreadID string
}

// Header is one name/value pair from a message payload. Names are
// matched case-insensitively by consumers.
type Header struct {
	Name  string
	Value string
}

// Body carries the content of a leaf payload node. Data is URL-safe
// base64; AttachmentID is set when the content must be fetched
// separately.
type Body struct {
	AttachmentID string
	Size         int64
	Data         string
}

// Payload is one node of a message's content tree: its own MIME type,
// an optional body, and optional child nodes for multipart containers.
type Payload struct {
	MimeType string
	Filename string
	Headers  []Header
	Body     Body
	Parts    []*Payload
}

// Message is the wire form of a fetched message before decoding.
type Message struct {
	ID       string
	ThreadID string
	LabelIDs []string
	Snippet  string
	Payload  *Payload
}

// Label is a remote label record, referenced by id or by name.
type Label struct {
	ID   string
	Name string
}

// Alias describes a send-as address on the account, including its
// HTML signature.
type Alias struct {
	SendAsEmail string
	DisplayName string
	ReplyTo     string
	Signature   string
	IsDefault   bool
}

// ListQuery restricts a message listing.
type ListQuery struct {
	Query            string
	LabelIDs         []string
	IncludeSpamTrash bool
	PageSize         int
}

// ListPage is one page of message references.
type ListPage struct {
	Refs          []MessageRef
	NextPageToken string
}

// System label ids defined by the remote service.
const (
	LabelInbox     = "INBOX"
	LabelUnread    = "UNREAD"
	LabelStarred   = "STARRED"
	LabelImportant = "IMPORTANT"
	LabelSpam      = "SPAM"
	LabelTrash     = "TRASH"
	LabelSent      = "SENT"
	LabelDraft     = "DRAFT"
)
