package decode

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// sanitizeHTML normalizes an HTML part to its body fragment: the
// document and head wrappers the sender may have included are dropped,
// the children of <body> are kept as-is. The parser tolerates the
// malformed markup real mail contains.
func sanitizeHTML(raw []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	body := findBody(doc)
	if body == nil {
		// html.Parse synthesizes html/head/body for any input, so
		// this branch is unreachable in practice.
		return string(raw), nil
	}
	var b strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findBody(c); found != nil {
			return found
		}
	}
	return nil
}
