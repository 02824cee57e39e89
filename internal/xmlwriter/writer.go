// =============================================================================
// CSV to XML Converter - XML Writer Module
// =============================================================================
//
// This module serializes the element tree built by the row mapper.
//
// XML STRUCTURE:
//
//   <?xml version="1.0" encoding="UTF-8"?>
//   <root>                        <!-- document element (root tag) -->
//     <person>                    <!-- one element per row (row tag) -->
//       <name>Ana</name>          <!-- leaves keep their text inline -->
//       <address>                 <!-- containers open on their own line -->
//         <city>Lyon</city>
//       </address>
//       <nickname />              <!-- leaf without text -->
//     </person>
//   </root>
//
// Serialization runs in two steps. Events (events.go) turns the tree into a
// flat event list without touching the tree; the writer below lays those
// events out with indentation and escapes the text. Output is transcoded to
// the configured encoding.
//
// With an empty Indent the document is written compactly, on one line after
// the declaration.
//
// =============================================================================

package xmlwriter

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/csv2xml/internal/charset"
	"github.com/ginjaninja78/csv2xml/internal/tree"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// Options contains options for XML generation.
type Options struct {
	// Indent is the string written once per nesting level. Empty means
	// compact output without line breaks.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to write the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// Encoding is the output character encoding; its canonical name is used
	// in the declaration.
	// Default: "UTF-8"
	Encoding string
}

// DefaultOptions returns the default generation options.
func DefaultOptions() Options {
	return Options{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		Encoding:              "UTF-8",
	}
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate renders root with the default options.
func Generate(root *tree.Node) ([]byte, error) {
	var buffer bytes.Buffer
	if err := Render(&buffer, root, DefaultOptions()); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Render writes the document rooted at root to w.
func Render(w io.Writer, root *tree.Node, options Options) error {
	cs, err := charset.Lookup(options.Encoding)
	if err != nil {
		return fmt.Errorf("failed to set up output encoding: %w", err)
	}

	encoded := cs.NewWriter(w)
	buffer := bufio.NewWriter(encoded)

	// Names are checked against XML 1.0 only, so no other version is offered.
	if options.IncludeXMLDeclaration {
		fmt.Fprintf(buffer, "<?xml version=\"1.0\" encoding=\"%s\"?>\n", cs.Name)
	}

	if err := writeEvents(buffer, Events(root), options.Indent); err != nil {
		return fmt.Errorf("failed to write XML: %w", err)
	}

	if err := buffer.Flush(); err != nil {
		return fmt.Errorf("failed to write XML: %w", err)
	}

	if err := encoded.Close(); err != nil {
		return fmt.Errorf("failed to encode XML: %w", err)
	}

	return nil
}

// writeEvents lays out events one element per line. Text stays on the line
// of its start tag; the end tag follows it directly. Without an indent no
// line breaks are written until the document ends.
func writeEvents(buffer *bufio.Writer, events []Event, indent string) error {
	newline := "\n"
	if indent == "" {
		newline = ""
	}

	kindAt := func(i int) Kind {
		if i < 0 || i >= len(events) {
			return -1
		}
		return events[i].Kind
	}

	for i, ev := range events {
		switch ev.Kind {
		case KindEmpty:
			writeIndent(buffer, indent, ev.Depth)
			buffer.WriteString("<" + ev.Name + " />" + newline)

		case KindStart:
			writeIndent(buffer, indent, ev.Depth)
			buffer.WriteString("<" + ev.Name + ">")
			if kindAt(i+1) != KindText {
				buffer.WriteString(newline)
			}

		case KindText:
			if err := xml.EscapeText(buffer, []byte(ev.Text)); err != nil {
				return err
			}
			// Mixed content: children go on the following lines.
			if kindAt(i+1) != KindEnd {
				buffer.WriteString(newline)
			}

		case KindEnd:
			if kindAt(i-1) != KindText {
				writeIndent(buffer, indent, ev.Depth)
			}
			buffer.WriteString("</" + ev.Name + ">" + newline)
		}
	}

	if newline == "" {
		buffer.WriteString("\n")
	}
	return nil
}

// writeIndent writes the indentation for a nesting level.
func writeIndent(buffer *bufio.Writer, indent string, level int) {
	if indent == "" || level == 0 {
		return
	}
	buffer.WriteString(strings.Repeat(indent, level))
}
