package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/nicky-ayoub/ebitreveal/internal/catalog"
)

// ProjectService is the viewer's entry point to the project catalog.
type ProjectService struct {
	Store  catalog.Store
	logger *zap.Logger
}

// NewProjectService constructs a new ProjectService.
func NewProjectService(store catalog.Store, logger *zap.Logger) *ProjectService {
	return &ProjectService{Store: store, logger: logger}
}

// Projects lists the catalog, dropping entries that cannot be shown.
func (ps *ProjectService) Projects(ctx context.Context) ([]catalog.Project, error) {
	list, err := ps.Store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	out := list[:0]
	for _, p := range list {
		if err := p.Validate(); err != nil {
			ps.logger.Warn("skipping project", zap.String("id", p.ID), zap.Error(err))
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Delete removes a project from the catalog.
func (ps *ProjectService) Delete(ctx context.Context, id string) error {
	if err := ps.Store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	ps.logger.Info("project deleted", zap.String("id", id))
	return nil
}

// Tags returns the distinct tags of projects, lower-cased and sorted.
func Tags(projects []catalog.Project) []string {
	seen := make(map[string]bool)
	for _, p := range projects {
		for _, t := range p.Tags {
			t = strings.ToLower(strings.TrimSpace(t))
			if t != "" {
				seen[t] = true
			}
		}
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
