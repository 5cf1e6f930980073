package decode

// Content is the folded body of a message: all plain parts merged, all
// HTML parts merged, attachments in decode order.
type Content struct {
	Plain       string
	HasPlain    bool
	HTML        string
	HasHTML     bool
	Attachments []Part
}

const (
	plainSeparator = "\n"
	htmlSeparator  = "<br/>"
)

// Assemble folds decoded parts into one Content. Parts are trusted to
// arrive in document order; nothing is re-sorted.
func Assemble(parts []Part) Content {
	var c Content
	for _, part := range parts {
		switch part.Kind {
		case PartPlain:
			if c.HasPlain {
				c.Plain += plainSeparator + part.Body
			} else {
				c.Plain = part.Body
				c.HasPlain = true
			}
		case PartHTML:
			if c.HasHTML {
				c.HTML += htmlSeparator + part.Body
			} else {
				c.HTML = part.Body
				c.HasHTML = true
			}
		case PartAttachment:
			c.Attachments = append(c.Attachments, part)
		}
	}
	return c
}
