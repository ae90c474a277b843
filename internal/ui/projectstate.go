package ui

import (
	"fmt"
	"sync"

	"github.com/nicky-ayoub/ebitreveal/internal/catalog"
)

// ViewportItem is a helper struct for the project strip, bundling a project
// with its index in the current view (filtered or full).
type ViewportItem struct {
	Project   catalog.Project
	ViewIndex int
}

// ProjectState manages the state of the project collection, including the
// full list, the filtered list, the current index and the filter tag.
type ProjectState struct {
	mu sync.RWMutex

	// The full list of projects, in catalog order
	projects []catalog.Project

	// The list when a filter is active
	filtered []catalog.Project

	// The current view index into the active list
	index int

	isFiltered bool
	filterTag  string
}

// NewProjectState creates a new ProjectState manager.
func NewProjectState() *ProjectState {
	return &ProjectState{}
}

// activeUnlocked returns the active list. It must be called with the lock held.
func (ps *ProjectState) activeUnlocked() []catalog.Project {
	if ps.isFiltered {
		return ps.filtered
	}
	return ps.projects
}

// indexOfUnlocked returns the view index of id in the active list, or -1.
func (ps *ProjectState) indexOfUnlocked(id string) int {
	for i, p := range ps.activeUnlocked() {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (ps *ProjectState) refilterUnlocked() {
	if !ps.isFiltered {
		ps.filtered = nil
		return
	}
	ps.filtered = ps.filtered[:0]
	for _, p := range ps.projects {
		if p.HasTag(ps.filterTag) {
			ps.filtered = append(ps.filtered, p)
		}
	}
}

// Replace swaps in a new project list. The current project stays selected
// when it is still present; otherwise the index is clamped.
func (ps *ProjectState) Replace(projects []catalog.Project) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	currentID := ""
	if list := ps.activeUnlocked(); ps.index >= 0 && ps.index < len(list) {
		currentID = list[ps.index].ID
	}

	ps.projects = append([]catalog.Project(nil), projects...)
	ps.refilterUnlocked()

	if i := ps.indexOfUnlocked(currentID); currentID != "" && i >= 0 {
		ps.index = i
		return
	}
	ps.clampIndexUnlocked()
}

func (ps *ProjectState) clampIndexUnlocked() {
	n := len(ps.activeUnlocked())
	switch {
	case n == 0:
		ps.index = -1
	case ps.index < 0:
		ps.index = 0
	case ps.index >= n:
		ps.index = n - 1
	}
}

// Count returns the size of the active list.
func (ps *ProjectState) Count() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.activeUnlocked())
}

// CurrentIndex returns the current view index, -1 when the list is empty.
func (ps *ProjectState) CurrentIndex() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.index
}

// SetIndex sets the current view index. Out of range values are ignored.
func (ps *ProjectState) SetIndex(i int) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if i >= 0 && i < len(ps.activeUnlocked()) {
		ps.index = i
	}
}

// Current returns the project at the current index, or nil if there is none.
func (ps *ProjectState) Current() *catalog.Project {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	p, err := ps.itemUnlocked(ps.index)
	if err != nil {
		return nil
	}
	return p
}

func (ps *ProjectState) itemUnlocked(viewIndex int) (*catalog.Project, error) {
	list := ps.activeUnlocked()
	if viewIndex < 0 || viewIndex >= len(list) {
		return nil, fmt.Errorf("view index %d out of bounds", viewIndex)
	}
	p := list[viewIndex]
	return &p, nil
}

// Navigate moves the view index by delta, wrapping around the list.
func (ps *ProjectState) Navigate(delta int) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	n := len(ps.activeUnlocked())
	if n == 0 {
		return
	}
	// (a % n + n) % n handles negative deltas
	ps.index = (ps.index + delta%n + n) % n
}

// IsFiltered returns true if a filter is active.
func (ps *ProjectState) IsFiltered() bool {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.isFiltered
}

// FilterTag returns the active filter tag.
func (ps *ProjectState) FilterTag() string {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.filterTag
}

// ApplyFilter restricts the view to projects carrying tag and selects the
// first of them.
func (ps *ProjectState) ApplyFilter(tag string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.isFiltered = true
	ps.filterTag = tag
	ps.refilterUnlocked()
	ps.index = 0
	ps.clampIndexUnlocked()
}

// ClearFilter returns to the full list, keeping the current project
// selected.
func (ps *ProjectState) ClearFilter() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if !ps.isFiltered {
		return
	}
	currentID := ""
	if p, err := ps.itemUnlocked(ps.index); err == nil {
		currentID = p.ID
	}
	ps.isFiltered = false
	ps.filterTag = ""
	ps.filtered = nil

	ps.index = 0
	if i := ps.indexOfUnlocked(currentID); i >= 0 {
		ps.index = i
	}
	ps.clampIndexUnlocked()
}

// Remove drops the project with id from all lists, adjusts the index and
// reports whether the active list became empty.
func (ps *ProjectState) Remove(id string) (listBecameEmpty bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	// view index of the removed item before any change
	removedView := ps.indexOfUnlocked(id)

	for i, p := range ps.projects {
		if p.ID == id {
			ps.projects = append(ps.projects[:i], ps.projects[i+1:]...)
			break
		}
	}
	if ps.isFiltered {
		for i, p := range ps.filtered {
			if p.ID == id {
				ps.filtered = append(ps.filtered[:i], ps.filtered[i+1:]...)
				break
			}
		}
	}

	n := len(ps.activeUnlocked())
	if n == 0 {
		ps.index = -1
		return true
	}
	if removedView != -1 && ps.index > removedView {
		ps.index--
	}
	ps.clampIndexUnlocked()
	return false
}

// ViewportItems returns the projects around centerIndex for the strip,
// along with the index of the central item within that slice.
func (ps *ProjectState) ViewportItems(centerIndex int, windowSize int) ([]ViewportItem, int) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	count := len(ps.activeUnlocked())
	if count == 0 {
		return []ViewportItem{}, -1
	}

	halfWindow := windowSize / 2
	start := centerIndex - halfWindow
	end := centerIndex + halfWindow

	if start < 0 {
		end -= start
		start = 0
	}
	if end >= count {
		start -= end - (count - 1)
		end = count - 1
	}
	if start < 0 {
		start = 0
	}

	items := make([]ViewportItem, 0, end-start+1)
	for i := start; i <= end; i++ {
		if p, err := ps.itemUnlocked(i); err == nil {
			items = append(items, ViewportItem{Project: *p, ViewIndex: i})
		}
	}
	return items, centerIndex - start
}
