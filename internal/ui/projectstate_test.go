package ui

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicky-ayoub/ebitreveal/internal/catalog"
)

func projects(n int, tagged ...int) []catalog.Project {
	isTagged := map[int]bool{}
	for _, i := range tagged {
		isTagged[i] = true
	}
	out := make([]catalog.Project, n)
	for i := range out {
		out[i] = catalog.Project{
			ID:        fmt.Sprintf("p%d", i),
			Title:     fmt.Sprintf("Project %d", i),
			BeforeURL: "b.jpg",
			AfterURL:  "a.jpg",
		}
		if isTagged[i] {
			out[i].Tags = []string{"interior"}
		}
	}
	return out
}

func TestProjectStateEmpty(t *testing.T) {
	ps := NewProjectState()
	ps.Replace(nil)
	assert.Equal(t, -1, ps.CurrentIndex())
	assert.Nil(t, ps.Current())
	ps.Navigate(1)
	assert.Equal(t, -1, ps.CurrentIndex())
	items, center := ps.ViewportItems(0, 5)
	assert.Empty(t, items)
	assert.Equal(t, -1, center)
}

func TestProjectStateNavigateWraps(t *testing.T) {
	ps := NewProjectState()
	ps.Replace(projects(3))
	require.Equal(t, 0, ps.CurrentIndex())

	ps.Navigate(-1)
	assert.Equal(t, 2, ps.CurrentIndex())
	ps.Navigate(1)
	assert.Equal(t, 0, ps.CurrentIndex())
	ps.Navigate(7)
	assert.Equal(t, 1, ps.CurrentIndex())
	assert.Equal(t, "p1", ps.Current().ID)

	ps.SetIndex(10)
	assert.Equal(t, 1, ps.CurrentIndex(), "out of range index is ignored")
}

func TestProjectStateReplaceKeepsSelection(t *testing.T) {
	ps := NewProjectState()
	ps.Replace(projects(4))
	ps.SetIndex(2)

	list := projects(4)
	list = append([]catalog.Project{{ID: "new", Title: "New", BeforeURL: "b", AfterURL: "a"}}, list...)
	ps.Replace(list)
	assert.Equal(t, "p2", ps.Current().ID)
	assert.Equal(t, 3, ps.CurrentIndex())

	ps.Replace(projects(2))
	assert.Equal(t, 1, ps.CurrentIndex(), "index clamps when the current project disappears")
}

func TestProjectStateFilter(t *testing.T) {
	ps := NewProjectState()
	ps.Replace(projects(5, 1, 3))
	ps.SetIndex(4)

	ps.ApplyFilter("INTERIOR")
	assert.True(t, ps.IsFiltered())
	assert.Equal(t, "INTERIOR", ps.FilterTag())
	assert.Equal(t, 2, ps.Count())
	assert.Equal(t, "p1", ps.Current().ID)

	ps.Navigate(1)
	assert.Equal(t, "p3", ps.Current().ID)

	ps.ClearFilter()
	assert.False(t, ps.IsFiltered())
	assert.Equal(t, 5, ps.Count())
	assert.Equal(t, "p3", ps.Current().ID, "clearing keeps the current project")

	ps.ApplyFilter("nothing")
	assert.Equal(t, 0, ps.Count())
	assert.Nil(t, ps.Current())
}

func TestProjectStateRemove(t *testing.T) {
	ps := NewProjectState()
	ps.Replace(projects(3))
	ps.SetIndex(2)

	assert.False(t, ps.Remove("p0"))
	assert.Equal(t, "p2", ps.Current().ID)
	assert.Equal(t, 1, ps.CurrentIndex())

	assert.False(t, ps.Remove("p2"))
	assert.Equal(t, "p1", ps.Current().ID)

	assert.True(t, ps.Remove("p1"))
	assert.Equal(t, -1, ps.CurrentIndex())
}

func TestProjectStateViewportItems(t *testing.T) {
	ps := NewProjectState()
	ps.Replace(projects(10))

	items, center := ps.ViewportItems(0, 5)
	require.Len(t, items, 5)
	assert.Equal(t, 0, items[0].ViewIndex)
	assert.Equal(t, 0, center)

	items, center = ps.ViewportItems(9, 5)
	require.Len(t, items, 5)
	assert.Equal(t, 5, items[0].ViewIndex)
	assert.Equal(t, 4, center)

	items, center = ps.ViewportItems(5, 5)
	assert.Equal(t, 3, items[0].ViewIndex)
	assert.Equal(t, 2, center)
}
