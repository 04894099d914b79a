package mixed

import "github.com/beevik/etree"

// FromElement builds a node from the content of an etree element. The
// element itself is not part of the result, only its children.
func FromElement(el *etree.Element) Node {
	if el == nil {
		return nil
	}
	var node Node
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			node = node.appendText(t.Data)
		case *etree.Element:
			kind := kindOf(t.Tag)
			if !kind.isWrapper() {
				node = append(node, Segment{Kind: kind})
				continue
			}
			node = append(node, Wrap(kind, FromElement(t)...))
		}
	}
	return node
}
