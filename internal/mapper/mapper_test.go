package mapper

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/csv2xml/internal/tree"
	"github.com/ginjaninja78/csv2xml/internal/types"
	"github.com/ginjaninja78/csv2xml/internal/validation"
)

// dump renders a subtree compactly: tag=text for leaves, tag(children) for
// containers.
func dump(n *tree.Node) string {
	if n.Len() == 0 {
		text, ok := n.Text()
		if !ok {
			return n.Tag()
		}
		return n.Tag() + "=" + text
	}
	parts := make([]string, 0, n.Len())
	for _, c := range n.Children() {
		parts = append(parts, dump(c))
	}
	return n.Tag() + "(" + strings.Join(parts, ",") + ")"
}

func TestResolveRowTag(t *testing.T) {
	tests := []struct {
		name     string
		headers  []string
		explicit string
		want     string
	}{
		{"shared prefix", []string{"p.name", "p.age"}, "", "p"},
		{"disjoint prefixes", []string{"a.x", "b.y"}, "", "record"},
		{"no delimiters", []string{"x", "y"}, "", "record"},
		{"no headers", nil, "", "record"},
		{"undotted headers ignored", []string{"person.name", "city", "person.age"}, "", "person"},
		{"explicit wins over shared prefix", []string{"p.name", "p.age"}, "row", "row"},
		{"explicit wins over no prefix", []string{"x", "y"}, "item", "item"},
		{"only first segment counts", []string{"p.a.b", "p.c"}, "", "p"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveRowTag(tt.headers, tt.explicit))
		})
	}
}

func TestPathFor(t *testing.T) {
	assert.Equal(t, []string{"id"}, PathFor("record.id", "record"))
	assert.Equal(t, []string{"a", "b", "c"}, PathFor("a.b.c", "record"))
	assert.Equal(t, []string{"b", "c"}, PathFor("a.b.c", "a"))
	assert.Equal(t, []string{"city"}, PathFor("city", "person"))
	// A lone segment equal to the row tag is kept.
	assert.Equal(t, []string{"person"}, PathFor("person", "person"))
	// Only an exact match is stripped.
	assert.Equal(t, []string{"persons", "x"}, PathFor("persons.x", "person"))
}

func TestGraft_SharedPrefix(t *testing.T) {
	row := tree.New("record")
	Graft(row, []string{"a", "b"}, "1")
	Graft(row, []string{"a", "c"}, "2")

	assert.Equal(t, "record(a(b=1,c=2))", dump(row))
}

func TestGraft_SamePathTwice(t *testing.T) {
	row := tree.New("record")
	Graft(row, []string{"a", "b"}, "first")
	Graft(row, []string{"a", "b"}, "second")

	require.Equal(t, 1, row.Len())
	require.Equal(t, 1, row.Child("a").Len())
	assert.Equal(t, "record(a(b=second))", dump(row))
}

func TestGraft_ContainersHoldNoText(t *testing.T) {
	row := tree.New("record")
	Graft(row, []string{"a", "b", "c"}, "x")

	_, ok := row.Child("a").Text()
	assert.False(t, ok)
	_, ok = row.Child("a").Child("b").Text()
	assert.False(t, ok)
}

func TestBuildRow_RoundTrip(t *testing.T) {
	headers := []string{"person.name", "person.age", "city"}
	row := types.Row{"Ana", "30", "Lyon"}

	rowTag := ResolveRowTag(headers, "")
	require.Equal(t, "person", rowTag)

	node := BuildRow(row, headers, rowTag, false)
	assert.Equal(t, "person(name=Ana,age=30,city=Lyon)", dump(node))
}

func TestBuildRow_SkipsEmptyByDefault(t *testing.T) {
	headers := []string{"id", "addr.city", "addr.zip", "contact.mail", "contact.phone"}
	row := types.Row{"7", "  ", "", "a@b", "\t"}

	node := BuildRow(row, headers, "record", false)
	assert.Equal(t, "record(id=7,contact(mail=a@b))", dump(node))
}

func TestBuildRow_KeepEmpty(t *testing.T) {
	headers := []string{"id", "addr.city", "addr.zip"}
	row := types.Row{"7", "", " "}

	node := BuildRow(row, headers, "record", true)
	assert.Equal(t, "record(id=7,addr(city=,zip= ))", dump(node))
}

func TestBuildRow_MissingValueIsNull(t *testing.T) {
	headers := []string{"id", "name"}
	row := types.Row{"1"}

	assert.Equal(t, "record(id=1)", dump(BuildRow(row, headers, "record", false)))
	assert.Equal(t, "record(id=1,name=)", dump(BuildRow(row, headers, "record", true)))
}

func TestBuildRow_ValuesAreNotTrimmed(t *testing.T) {
	headers := []string{"name"}
	row := types.Row{"  Ana "}

	assert.Equal(t, "record(name=  Ana )", dump(BuildRow(row, headers, "record", false)))
}

func TestBuildRow_DuplicatePathLastWins(t *testing.T) {
	headers := []string{"p.name", "name"}
	row := types.Row{"Ana", "Bea"}

	node := BuildRow(row, headers, "p", false)
	assert.Equal(t, "p(name=Bea)", dump(node))
}

func TestBuildRow_EmptyLaterDuplicateDoesNotOverwrite(t *testing.T) {
	headers := []string{"p.name", "name"}
	row := types.Row{"Ana", ""}

	assert.Equal(t, "p(name=Ana)", dump(BuildRow(row, headers, "p", false)))
	assert.Equal(t, "p(name=)", dump(BuildRow(row, headers, "p", true)))
}

func TestBuildRow_ExplicitRecordTagStripsPrefix(t *testing.T) {
	headers := []string{"record.id", "other.x"}
	row := types.Row{"9", "y"}

	node := BuildRow(row, headers, "record", false)
	assert.Equal(t, "record(id=9,other(x=y))", dump(node))
}

func TestMap_Document(t *testing.T) {
	table := &types.Table{
		Headers: []string{"person.name", "person.address.city", "person.address.zip"},
		Rows: []types.Row{
			{"Ana", "Lyon", "69001"},
			{"Bea", "", ""},
		},
	}

	doc, err := Map(table, Options{})
	require.NoError(t, err)

	assert.Equal(t, "root(person(name=Ana,address(city=Lyon,zip=69001)),person(name=Bea))", dump(doc))
}

func TestMap_RootTagAndExplicitRowTag(t *testing.T) {
	table := &types.Table{
		Headers: []string{"a.x", "b.y"},
		Rows:    []types.Row{{"1", "2"}},
	}

	doc, err := Map(table, Options{RootTag: "items", RowTag: "item"})
	require.NoError(t, err)
	assert.Equal(t, "items(item(a(x=1),b(y=2)))", dump(doc))
}

func TestMap_RowOrderPreserved(t *testing.T) {
	table := &types.Table{Headers: []string{"n"}}
	for _, v := range []string{"3", "1", "2"} {
		table.Rows = append(table.Rows, types.Row{v})
	}

	doc, err := Map(table, Options{})
	require.NoError(t, err)
	assert.Equal(t, "root(record(n=3),record(n=1),record(n=2))", dump(doc))
}

func TestMap_HeadersOnly(t *testing.T) {
	doc, err := Map(&types.Table{Headers: []string{"a.b", "a.c"}}, Options{})
	require.NoError(t, err)

	assert.Equal(t, "root", doc.Tag())
	assert.Zero(t, doc.Len())
}

func TestMap_AllEmptyRowKeepsRowElement(t *testing.T) {
	table := &types.Table{
		Headers: []string{"a", "b"},
		Rows:    []types.Row{{"", " "}},
	}

	doc, err := Map(table, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, doc.Len())
	assert.Zero(t, doc.Children()[0].Len())
}

func TestBuildRow_RepeatedHeaderKeepsNonEmptyValue(t *testing.T) {
	headers := []string{"id", "a", "a"}
	row := types.Row{"1", "x", ""}

	assert.Equal(t, "record(id=1,a=x)", dump(BuildRow(row, headers, "record", false)))
	assert.Equal(t, "record(id=1,a=)", dump(BuildRow(row, headers, "record", true)))
}

func TestMap_RejectsPrefixConflict(t *testing.T) {
	table := &types.Table{
		Source:  "people.csv",
		Headers: []string{"a", "a.b"},
		Rows:    []types.Row{{"1", "2"}},
	}

	doc, err := Map(table, Options{RowTag: "record"})
	assert.Nil(t, doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, validation.ErrInvalidHeaders))
	assert.Contains(t, err.Error(), "people.csv")
}

func TestMap_RejectsEmptySegment(t *testing.T) {
	table := &types.Table{Headers: []string{"a..b"}}

	_, err := Map(table, Options{})
	assert.ErrorIs(t, err, validation.ErrInvalidHeaders)
}

func TestMap_StrippingAvoidsConflict(t *testing.T) {
	// "p" alone stays ["p"] while "p.x" becomes ["x"]: no overlap.
	table := &types.Table{
		Headers: []string{"p", "p.x"},
		Rows:    []types.Row{{"1", "2"}},
	}

	doc, err := Map(table, Options{})
	require.NoError(t, err)
	assert.Equal(t, "root(p(p=1,x=2))", dump(doc))
}

func TestMap_InferredRowTagHidesPrefixConflict(t *testing.T) {
	table := &types.Table{
		Headers: []string{"a", "a.b"},
		Rows:    []types.Row{{"1", "2"}},
	}

	doc, err := Map(table, Options{})
	require.NoError(t, err)
	assert.Equal(t, "root(a(a=1,b=2))", dump(doc))
}

func TestMap_InvalidHeadersWithoutInference(t *testing.T) {
	table := &types.Table{
		Headers: []string{"a", "a.b", "c.d"},
		Rows:    []types.Row{{"1", "2", "3"}},
	}

	_, err := Map(table, Options{})
	assert.ErrorIs(t, err, validation.ErrInvalidHeaders)
}

func TestNewPlan(t *testing.T) {
	plan := NewPlan([]string{"person.name", "city"}, Options{})

	assert.Equal(t, "root", plan.RootTag)
	assert.Equal(t, "person", plan.RowTag)
	require.Len(t, plan.Columns, 2)
	assert.Equal(t, []string{"name"}, plan.Columns[0].Path)
	assert.Equal(t, []string{"city"}, plan.Columns[1].Path)
	assert.True(t, plan.Validate().IsValid())
}

func TestPlan_ValidatesOnce(t *testing.T) {
	plan := NewPlan([]string{"x", "x"}, Options{})

	first := plan.Validate()
	assert.Equal(t, 1, first.WarningCount)
	assert.Same(t, first, plan.Validate())

	doc, err := plan.Map(&types.Table{Headers: []string{"x", "x"}, Rows: []types.Row{{"1", "2"}}})
	require.NoError(t, err)
	assert.Equal(t, "root(record(x=2))", dump(doc))
	assert.Same(t, first, plan.Validate())
}

func TestPlan_ValidationOptions(t *testing.T) {
	noEuro := func(name string) bool { return !strings.ContainsRune(name, '€') }

	plan := NewPlan([]string{"price€"}, Options{Validation: validation.Options{Encodable: noEuro}})
	_, err := plan.Map(&types.Table{Headers: []string{"price€"}})
	assert.ErrorIs(t, err, validation.ErrInvalidHeaders)

	strict := NewPlan([]string{"x", "x"}, Options{Validation: validation.Options{TreatWarningsAsErrors: true}})
	assert.False(t, strict.Validate().IsValid())
}
