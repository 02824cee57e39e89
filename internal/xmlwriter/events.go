package xmlwriter

import "github.com/ginjaninja78/csv2xml/internal/tree"

// Kind is the type of a serialization event.
type Kind int

const (
	// KindStart opens an element that has text or children.
	KindStart Kind = iota
	// KindText is character data of the enclosing element.
	KindText
	// KindEnd closes the element opened by the matching KindStart.
	KindEnd
	// KindEmpty is an element without text or children.
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindText:
		return "text"
	case KindEnd:
		return "end"
	case KindEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Event is one step of a document walk. Depth is 0 for the document element.
type Event struct {
	Kind  Kind
	Name  string
	Text  string
	Depth int
}

// Events flattens the tree rooted at root into the ordered event sequence
// used for serialization. The tree is only read.
//
// Text-less leaves (and leaves whose text is "") become a single KindEmpty
// event; every other element becomes KindStart, an optional KindText, its
// children's events, then KindEnd.
func Events(root *tree.Node) []Event {
	events := make([]Event, 0, root.Count()*2)
	return appendEvents(events, root, 0)
}

func appendEvents(events []Event, n *tree.Node, depth int) []Event {
	text, _ := n.Text()
	if text == "" && n.Len() == 0 {
		return append(events, Event{Kind: KindEmpty, Name: n.Tag(), Depth: depth})
	}

	events = append(events, Event{Kind: KindStart, Name: n.Tag(), Depth: depth})
	if text != "" {
		events = append(events, Event{Kind: KindText, Text: text, Depth: depth})
	}
	for _, child := range n.Children() {
		events = appendEvents(events, child, depth+1)
	}
	return append(events, Event{Kind: KindEnd, Name: n.Tag(), Depth: depth})
}
