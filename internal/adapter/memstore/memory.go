package memstore

import (
	"fmt"
	"sync"

	"suggest/internal/domain"
)

// MemoryStore is an in-memory item repository for tests and examples.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[string]domain.Project
	files    map[string][]domain.File
	prompts  map[string][]domain.Prompt
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects: make(map[string]domain.Project),
		files:    make(map[string][]domain.File),
		prompts:  make(map[string][]domain.Prompt),
	}
}

func (s *MemoryStore) PutProject(p domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = p
	return nil
}

func (s *MemoryStore) GetProject(id string) (domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return domain.Project{}, fmt.Errorf("%w: %s", domain.ErrProjectNotFound, id)
	}
	return p, nil
}

func (s *MemoryStore) PutFile(f domain.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.files[f.ProjectID] {
		if existing.ID == f.ID {
			s.files[f.ProjectID][i] = f
			return nil
		}
	}
	s.files[f.ProjectID] = append(s.files[f.ProjectID], f)
	return nil
}

func (s *MemoryStore) ListFiles(projectID string) ([]domain.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	files := make([]domain.File, len(s.files[projectID]))
	copy(files, s.files[projectID])
	return files, nil
}

func (s *MemoryStore) DeleteFilesByProject(projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, projectID)
	return nil
}

func (s *MemoryStore) PutPrompt(p domain.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.prompts[p.ProjectID] {
		if existing.ID == p.ID {
			s.prompts[p.ProjectID][i] = p
			return nil
		}
	}
	s.prompts[p.ProjectID] = append(s.prompts[p.ProjectID], p)
	return nil
}

func (s *MemoryStore) ListPrompts(projectID string) ([]domain.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prompts := make([]domain.Prompt, len(s.prompts[projectID]))
	copy(prompts, s.prompts[projectID])
	return prompts, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
