// Package query builds Gmail search query strings from structured
// criteria. And-groups render as `(a b)`, or-groups as `{a b}`,
// negation as `-a`; single-term groups collapse to the bare term.
package query

import (
	"fmt"
	"strings"
)

// And joins terms so all must match.
func And(terms ...string) string {
	if len(terms) == 1 {
		return terms[0]
	}
	return "(" + strings.Join(terms, " ") + ")"
}

// Or joins terms so any may match.
func Or(terms ...string) string {
	if len(terms) == 1 {
		return terms[0]
	}
	return "{" + strings.Join(terms, " ") + "}"
}

// Not negates a term.
func Not(term string) string { return "-" + term }

// Unit is a relative-age unit in the remote service's query syntax.
type Unit string

const (
	Days   Unit = "d"
	Months Unit = "m"
	Years  Unit = "y"
)

// Age is a relative message age, e.g. {1, Days} = 1 day.
type Age struct {
	N    int
	Unit Unit
}

// Near matches two words within Distance words of each other.
type Near struct {
	First    string
	Second   string
	Distance int
}

// Spec is one and-group of search criteria. Slice fields with several
// values are or:ed; Labels is an or-group of and-groups (each inner
// slice must match in full).
type Spec struct {
	Sender    []string
	Recipient []string
	Subject   []string
	Labels    [][]string

	Attachment bool
	Starred    bool
	Unread     bool

	NewerThan *Age
	OlderThan *Age
	Near      *Near

	ExcludeStarred bool
	ExcludeLabels  []string
}

// String renders the spec as one query term.
func (s Spec) String() string {
	var terms []string

	appendOr := func(prefix string, values []string) {
		if len(values) == 0 {
			return
		}
		parts := make([]string, 0, len(values))
		for _, v := range values {
			parts = append(parts, prefix+":"+v)
		}
		terms = append(terms, Or(parts...))
	}

	appendOr("from", s.Sender)
	appendOr("to", s.Recipient)

	if s.NewerThan != nil {
		terms = append(terms, fmt.Sprintf("newer_than:%d%s", s.NewerThan.N, s.NewerThan.Unit))
	}
	if s.OlderThan != nil {
		terms = append(terms, fmt.Sprintf("older_than:%d%s", s.OlderThan.N, s.OlderThan.Unit))
	}

	appendOr("subject", s.Subject)

	if s.Near != nil {
		terms = append(terms, fmt.Sprintf("%s AROUND %d %s", s.Near.First, s.Near.Distance, s.Near.Second))
	}
	if s.Attachment {
		terms = append(terms, "has:attachment")
	}
	if s.Starred {
		terms = append(terms, "is:starred")
	}
	if s.Unread {
		terms = append(terms, "is:unread")
	}
	if s.ExcludeStarred {
		terms = append(terms, Not("is:starred"))
	}
	for _, l := range s.ExcludeLabels {
		terms = append(terms, Not("label:"+l))
	}

	if len(s.Labels) > 0 {
		groups := make([]string, 0, len(s.Labels))
		for _, group := range s.Labels {
			parts := make([]string, 0, len(group))
			for _, l := range group {
				parts = append(parts, "label:"+l)
			}
			groups = append(groups, And(parts...))
		}
		terms = append(terms, Or(groups...))
	}

	if len(terms) == 0 {
		return ""
	}
	return And(terms...)
}

// Construct renders several specs as alternatives: any spec matching
// matches the query.
func Construct(specs ...Spec) string {
	switch len(specs) {
	case 0:
		return ""
	case 1:
		return specs[0].String()
	}
	terms := make([]string, 0, len(specs))
	for _, s := range specs {
		terms = append(terms, s.String())
	}
	return Or(terms...)
}
