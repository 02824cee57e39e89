// =============================================================================
// CSV to XML Converter - Row Mapper
// =============================================================================
//
// This module turns flat rows into nested elements. Every column header is a
// dot-delimited element path, e.g. "person.address.city". For each row a
// fresh row element is created and every column's path is grafted into it,
// reusing elements already created by earlier columns of the same row.
//
// EXAMPLE:
//   headers: person.name ; person.age ; city
//   row:     Ana         ; 30         ; Lyon
//
//   <root>
//     <person>          <!-- row tag inferred from the shared "person" prefix -->
//       <name>Ana</name>
//       <age>30</age>
//       <city>Lyon</city>
//     </person>
//   </root>
//
// Nothing in this module performs I/O. All functions are deterministic.
//
// =============================================================================

package mapper

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/csv2xml/internal/tree"
	"github.com/ginjaninja78/csv2xml/internal/types"
	"github.com/ginjaninja78/csv2xml/internal/validation"
)

const (
	// Delimiter separates path segments in a header.
	Delimiter = "."

	// DefaultRowTag wraps each row when no tag is given and none can be inferred.
	DefaultRowTag = "record"

	// DefaultRootTag is the document element name.
	DefaultRootTag = "root"
)

// =============================================================================
// ROW TAG RESOLUTION
// =============================================================================

// ResolveRowTag returns the element name used for every row.
//
// A non-empty explicit tag always wins. Otherwise, when all headers that
// contain the delimiter share one first segment, that segment is used;
// headers without a delimiter do not take part. In every other case the
// result is DefaultRowTag.
func ResolveRowTag(headers []string, explicit string) string {
	if explicit != "" {
		return explicit
	}

	var first string
	found := false
	for _, h := range headers {
		head, _, ok := strings.Cut(h, Delimiter)
		if !ok {
			continue
		}
		if !found {
			first, found = head, true
			continue
		}
		if head != first {
			return DefaultRowTag
		}
	}

	if !found {
		return DefaultRowTag
	}
	return first
}

// =============================================================================
// PATH RESOLUTION
// =============================================================================

// PathFor splits header into element names. A leading segment equal to
// rowTag is dropped when more segments follow, since the row element already
// represents it. The result always has at least one segment.
func PathFor(header, rowTag string) []string {
	parts := strings.Split(header, Delimiter)
	if len(parts) > 1 && parts[0] == rowTag {
		return parts[1:]
	}
	return parts
}

// =============================================================================
// GRAFTING
// =============================================================================

// Graft walks path from rowRoot, reusing the first child with a matching tag
// at each level and creating it otherwise, then sets the last node's text to
// value. Existing nodes are never removed or reordered.
func Graft(rowRoot *tree.Node, path []string, value string) {
	node := rowRoot
	for _, seg := range path {
		node = node.Ensure(seg)
	}
	node.SetText(value)
}

// =============================================================================
// ROW BUILDING
// =============================================================================

// isEmpty reports whether a cell counts as empty: absent, or blank once
// surrounding whitespace is trimmed.
func isEmpty(value string, present bool) bool {
	return !present || strings.TrimSpace(value) == ""
}

// BuildRow creates the element for one row. Columns are visited in header
// order and row values are read by column position. Empty cells are skipped
// unless keepEmpty is set, in which case they become leaves with empty text.
func BuildRow(row types.Row, headers []string, rowTag string, keepEmpty bool) *tree.Node {
	node := tree.New(rowTag)

	for i, header := range headers {
		value, present := row.Cell(i)
		if !keepEmpty && isEmpty(value, present) {
			continue
		}
		Graft(node, PathFor(header, rowTag), value)
	}

	return node
}

// =============================================================================
// DOCUMENT MAPPING
// =============================================================================

// Options configures a document mapping.
type Options struct {
	// RootTag is the document element name. Default: "root".
	RootTag string

	// RowTag overrides row tag inference when non-empty.
	RowTag string

	// KeepEmpty turns empty cells into empty elements instead of skipping them.
	KeepEmpty bool

	// Validation is passed to the header validator.
	Validation validation.Options
}

// Plan is the resolved layout of a header set.
type Plan struct {
	RootTag   string
	RowTag    string
	Columns   []validation.Column
	KeepEmpty bool

	checks validation.Options
	result *validation.Result
}

// NewPlan resolves the root tag, the row tag and every column path.
func NewPlan(headers []string, opts Options) *Plan {
	rootTag := opts.RootTag
	if rootTag == "" {
		rootTag = DefaultRootTag
	}
	rowTag := ResolveRowTag(headers, opts.RowTag)

	cols := make([]validation.Column, len(headers))
	for i, h := range headers {
		cols[i] = validation.Column{Header: h, Path: PathFor(h, rowTag)}
	}

	return &Plan{
		RootTag:   rootTag,
		RowTag:    rowTag,
		Columns:   cols,
		KeepEmpty: opts.KeepEmpty,
		checks:    opts.Validation,
	}
}

// Validate checks the plan's tags and paths. The result is computed once
// and reused by later calls, including the one made by Map.
func (p *Plan) Validate() *validation.Result {
	if p.result == nil {
		p.result = validation.New(p.checks).Validate(p.RootTag, p.RowTag, p.Columns)
	}
	return p.result
}

// Map builds the whole document for table, whose headers must be the ones
// the plan was made from. If the headers are rejected no tree is built and
// the error wraps validation.ErrInvalidHeaders.
func (p *Plan) Map(table *types.Table) (*tree.Node, error) {
	if err := p.Validate().Err(); err != nil {
		return nil, fmt.Errorf("failed to map %s: %w", sourceName(table), err)
	}

	root := tree.New(p.RootTag)
	for _, row := range table.Rows {
		root.Append(BuildRow(row, table.Headers, p.RowTag, p.KeepEmpty))
	}

	return root, nil
}

// Map plans, validates and builds the whole document for table in one step.
func Map(table *types.Table, opts Options) (*tree.Node, error) {
	return NewPlan(table.Headers, opts).Map(table)
}

func sourceName(table *types.Table) string {
	if table.Source == "" {
		return "input"
	}
	return table.Source
}
