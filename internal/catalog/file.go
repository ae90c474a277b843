package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// document is the on-disk layout of a catalog file.
type document struct {
	Projects []Project `yaml:"projects"`
}

// FileStore keeps projects in a single YAML file. Every call reads the file,
// so edits made by other processes are picked up.
type FileStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewFileStore returns a store backed by path. A missing file is an empty
// catalog; it is created on the first Put.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) load() (map[string]Project, []string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]Project{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading catalog %s: %w", s.path, err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parsing catalog %s: %w", s.path, err)
	}
	byID := make(map[string]Project, len(doc.Projects))
	order := make([]string, 0, len(doc.Projects))
	for _, p := range doc.Projects {
		if p.ID == "" {
			continue
		}
		if _, dup := byID[p.ID]; !dup {
			order = append(order, p.ID)
		}
		byID[p.ID] = p
	}
	return byID, order, nil
}

func (s *FileStore) save(projects map[string]Project) error {
	doc := document{Projects: make([]Project, 0, len(projects))}
	for _, p := range projects {
		doc.Projects = append(doc.Projects, p)
	}
	sortProjects(doc.Projects)

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating catalog dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".catalog-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing catalog: %w", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (Project, error) {
	if err := ctx.Err(); err != nil {
		return Project{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	projects, _, err := s.load()
	if err != nil {
		return Project{}, err
	}
	p, ok := projects[id]
	if !ok {
		return Project{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, nil
}

func (s *FileStore) List(ctx context.Context) ([]Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	projects, order, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]Project, 0, len(order))
	for _, id := range order {
		out = append(out, projects[id])
	}
	sortProjects(out)
	return out, nil
}

func (s *FileStore) Put(ctx context.Context, p Project) (Project, error) {
	if err := ctx.Err(); err != nil {
		return Project{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	projects, _, err := s.load()
	if err != nil {
		return Project{}, err
	}
	p, err = prepare(p, s.now(), projects)
	if err != nil {
		return Project{}, err
	}
	projects[p.ID] = p
	if err := s.save(projects); err != nil {
		return Project{}, err
	}
	return p, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	projects, _, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := projects[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(projects, id)
	return s.save(projects)
}

