// Package mixed models XML mixed content, text runs interleaved with inline
// formatting elements, and collapses it into plain text.
//
// MEDLINE titles, keywords and citations carry <i>, <b>, <sup>, <sub> and
// MathML inside otherwise plain text, e.g.
//
//	<ArticleTitle>Role of <i>p53</i> in cancer</ArticleTitle>
//
// Decoding keeps the structure, Flatten drops the formatting.
package mixed

import (
	"encoding/xml"
	"strings"
)

// Kind of a segment.
type Kind int

const (
	Text Kind = iota
	Italic
	Bold
	Superscript
	Subscript
	Math
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Italic:
		return "i"
	case Bold:
		return "b"
	case Superscript:
		return "sup"
	case Subscript:
		return "sub"
	case Math:
		return "math"
	default:
		return "unknown"
	}
}

// isWrapper reports whether the kind wraps further content whose text survives.
func (k Kind) isWrapper() bool {
	switch k {
	case Italic, Bold, Superscript, Subscript:
		return true
	}
	return false
}

// kindOf maps a local element name to a segment kind.
func kindOf(local string) Kind {
	switch strings.ToLower(local) {
	case "i":
		return Italic
	case "b", "u": // underline is rendered like bold
		return Bold
	case "sup":
		return Superscript
	case "sub":
		return Subscript
	case "math":
		return Math
	}
	return Unknown
}

// Segment is a single piece of mixed content. Text is only set for Text
// segments, Children only for formatting wrappers.
type Segment struct {
	Kind     Kind
	Text     string
	Children Node
}

// Node is an ordered sequence of segments.
type Node []Segment

// NewText returns a text segment.
func NewText(s string) Segment {
	return Segment{Kind: Text, Text: s}
}

// Wrap returns a segment of the given kind wrapping children.
func Wrap(kind Kind, children ...Segment) Segment {
	return Segment{Kind: kind, Children: children}
}

// Flatten collapses a node into plain text. Every top-level segment is
// flattened recursively and trimmed, non-empty results are joined with a
// single space. Math and unknown elements contribute nothing. Flatten never
// fails.
func Flatten(n Node) string {
	parts := make([]string, 0, len(n))
	for _, s := range n {
		if v := strings.TrimSpace(s.text()); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// String returns the flattened text.
func (n Node) String() string {
	return Flatten(n)
}

// text concatenates the text of a segment and everything below it, untrimmed.
func (s Segment) text() string {
	switch {
	case s.Kind == Text:
		return s.Text
	case s.Kind.isWrapper():
		var sb strings.Builder
		for _, c := range s.Children {
			sb.WriteString(c.text())
		}
		return sb.String()
	default:
		return ""
	}
}

// appendText adds a text run, merging it with a preceding text run; CDATA
// sections and character data arrive as separate tokens.
func (n Node) appendText(s string) Node {
	if len(n) > 0 && n[len(n)-1].Kind == Text {
		n[len(n)-1].Text += s
		return n
	}
	return append(n, NewText(s))
}

// UnmarshalXML decodes the content of the start element into segments.
func (n *Node) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	children, err := decodeContent(d)
	if err != nil {
		return err
	}
	*n = children
	return nil
}

// decodeContent reads tokens up to and including the end element matching the
// element whose start has already been consumed.
func decodeContent(d *xml.Decoder) (Node, error) {
	var node Node
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			node = node.appendText(string(t))
		case xml.StartElement:
			kind := kindOf(t.Name.Local)
			if !kind.isWrapper() {
				if err := d.Skip(); err != nil {
					return nil, err
				}
				node = append(node, Segment{Kind: kind})
				continue
			}
			children, err := decodeContent(d)
			if err != nil {
				return nil, err
			}
			node = append(node, Wrap(kind, children...))
		case xml.EndElement:
			return node, nil
		}
	}
}
