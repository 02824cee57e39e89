package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tags(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Tag())
	}
	return out
}

func TestEnsure_ReusesExistingChild(t *testing.T) {
	root := New("row")

	a := root.Ensure("a")
	again := root.Ensure("a")

	assert.Same(t, a, again)
	assert.Equal(t, 1, root.Len())
}

func TestEnsure_PreservesCreationOrder(t *testing.T) {
	root := New("row")
	for _, tag := range []string{"c", "a", "b", "a", "c"} {
		root.Ensure(tag)
	}

	assert.Equal(t, []string{"c", "a", "b"}, tags(root.Children()))
}

func TestAppend_AllowsSharedTagsAndKeepsFirstMatch(t *testing.T) {
	root := New("root")
	first := New("person")
	second := New("person")

	root.Append(first)
	root.Append(second)

	require.Equal(t, 2, root.Len())
	assert.Same(t, first, root.Child("person"))
	assert.Same(t, first, root.Ensure("person"))
	assert.Equal(t, 2, root.Len())
}

func TestChild_MissingReturnsNil(t *testing.T) {
	assert.Nil(t, New("x").Child("y"))
}

func TestSetText_Overwrites(t *testing.T) {
	n := New("name")

	_, ok := n.Text()
	assert.False(t, ok)

	n.SetText("Ana")
	n.SetText("Bea")

	text, ok := n.Text()
	assert.True(t, ok)
	assert.Equal(t, "Bea", text)
}

func TestSetText_EmptyStillCounts(t *testing.T) {
	n := New("name")
	n.SetText("")

	text, ok := n.Text()
	assert.True(t, ok)
	assert.Equal(t, "", text)
}

func TestCountAndWalk(t *testing.T) {
	root := New("root")
	row := root.Ensure("person")
	row.Ensure("name")
	row.Ensure("address").Ensure("city")

	assert.Equal(t, 5, root.Count())

	var visited []string
	var depths []int
	root.Walk(func(n *Node, depth int) {
		visited = append(visited, n.Tag())
		depths = append(depths, depth)
	})

	assert.Equal(t, []string{"root", "person", "name", "address", "city"}, visited)
	assert.Equal(t, []int{0, 1, 2, 2, 3}, depths)
}
