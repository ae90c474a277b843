// Package catalog stores the studio projects shown by the viewer. Storage is
// opaque to callers: everything goes through Get, List, Put and Delete.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no project has the requested ID.
	ErrNotFound = errors.New("project not found")
	// ErrInvalidProject is returned by Put for projects missing required fields.
	ErrInvalidProject = errors.New("invalid project")
)

// Project is one before/after comparison.
type Project struct {
	ID          string    `yaml:"id"`
	Title       string    `yaml:"title"`
	BeforeURL   string    `yaml:"before_url"`
	AfterURL    string    `yaml:"after_url"`
	Description string    `yaml:"description,omitempty"`
	Tags        []string  `yaml:"tags,omitempty"`
	CreatedAt   time.Time `yaml:"created_at"`
}

// HasTag reports whether the project carries tag, ignoring case.
func (p Project) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Validate checks the required fields.
func (p Project) Validate() error {
	var missing []string
	if strings.TrimSpace(p.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(p.BeforeURL) == "" {
		missing = append(missing, "before_url")
	}
	if strings.TrimSpace(p.AfterURL) == "" {
		missing = append(missing, "after_url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidProject, strings.Join(missing, ", "))
	}
	return nil
}

// Store is the project persistence contract.
type Store interface {
	Get(ctx context.Context, id string) (Project, error)
	List(ctx context.Context) ([]Project, error)
	// Put inserts or replaces a project and returns it with ID and
	// CreatedAt filled in.
	Put(ctx context.Context, p Project) (Project, error)
	Delete(ctx context.Context, id string) error
}

// prepare fills in the generated fields of p. A replaced project keeps the
// creation time found in existing.
func prepare(p Project, now time.Time, existing map[string]Project) (Project, error) {
	if err := p.Validate(); err != nil {
		return Project{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		if old, ok := existing[p.ID]; ok && !old.CreatedAt.IsZero() {
			p.CreatedAt = old.CreatedAt
		} else {
			p.CreatedAt = now.UTC()
		}
	}
	return p, nil
}

func sortProjects(ps []Project) {
	sort.SliceStable(ps, func(i, j int) bool {
		if !ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].CreatedAt.Before(ps[j].CreatedAt)
		}
		return ps[i].ID < ps[j].ID
	})
}

// MemoryStore keeps projects in memory.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[string]Project
	now      func() time.Time
}

// NewMemoryStore creates a store seeded with projects.
func NewMemoryStore(seed ...Project) *MemoryStore {
	ms := &MemoryStore{
		projects: make(map[string]Project),
		now:      time.Now,
	}
	for _, p := range seed {
		if p, err := prepare(p, ms.now(), ms.projects); err == nil {
			ms.projects[p.ID] = p
		}
	}
	return ms
}

func (ms *MemoryStore) Get(ctx context.Context, id string) (Project, error) {
	if err := ctx.Err(); err != nil {
		return Project{}, err
	}
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	p, ok := ms.projects[id]
	if !ok {
		return Project{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, nil
}

func (ms *MemoryStore) List(ctx context.Context) ([]Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	out := make([]Project, 0, len(ms.projects))
	for _, p := range ms.projects {
		out = append(out, p)
	}
	sortProjects(out)
	return out, nil
}

func (ms *MemoryStore) Put(ctx context.Context, p Project) (Project, error) {
	if err := ctx.Err(); err != nil {
		return Project{}, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	p, err := prepare(p, ms.now(), ms.projects)
	if err != nil {
		return Project{}, err
	}
	ms.projects[p.ID] = p
	return p, nil
}

func (ms *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.projects[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(ms.projects, id)
	return nil
}
