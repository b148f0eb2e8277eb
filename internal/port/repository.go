package port

import "suggest/internal/domain"

// ItemRepository is the only read dependency for building the candidate
// universe. List methods return point-in-time snapshots.
type ItemRepository interface {
	GetProject(id string) (domain.Project, error)

	ListFiles(projectID string) ([]domain.File, error)

	ListPrompts(projectID string) ([]domain.Prompt, error)
}

// ItemWriter is the write side used by the indexer and CLI glue.
type ItemWriter interface {
	PutProject(p domain.Project) error

	PutFile(f domain.File) error

	PutPrompt(p domain.Prompt) error

	DeleteFilesByProject(projectID string) error

	Close() error
}
