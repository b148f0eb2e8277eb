package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"suggest/internal/domain"
)

var (
	bucketProjects = []byte("projects")
	bucketFiles    = []byte("files")
	bucketPrompts  = []byte("prompts")
)

// BoltStore is the bbolt-backed item repository. Files and prompts live
// in per-project nested buckets so snapshot reads never scan other
// projects.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketProjects, bucketFiles, bucketPrompts} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

type projectMeta struct {
	Name      string `json:"name"`
	RootDir   string `json:"root_dir"`
	CreatedAt int64  `json:"created_at"`
}

type fileMeta struct {
	Path      string   `json:"path"`
	Name      string   `json:"name"`
	Extension string   `json:"extension"`
	Content   string   `json:"content"`
	Size      int64    `json:"size"`
	Imports   []string `json:"imports,omitempty"`
	CreatedAt int64    `json:"created_at"`
	UpdatedAt int64    `json:"updated_at"`
}

type promptMeta struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt int64    `json:"created_at"`
	UpdatedAt int64    `json:"updated_at"`
}

func (s *BoltStore) PutProject(p domain.Project) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		meta := projectMeta{
			Name:      p.Name,
			RootDir:   p.RootDir,
			CreatedAt: p.CreatedAt.Unix(),
		}
		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketProjects).Put([]byte(p.ID), data)
	})
}

func (s *BoltStore) GetProject(id string) (domain.Project, error) {
	var p domain.Project
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketProjects).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", domain.ErrProjectNotFound, id)
		}
		var meta projectMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return err
		}
		p = domain.Project{
			ID:        id,
			Name:      meta.Name,
			RootDir:   meta.RootDir,
			CreatedAt: time.Unix(meta.CreatedAt, 0),
		}
		return nil
	})
	return p, err
}

func (s *BoltStore) PutFile(f domain.File) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.Bucket(bucketFiles).CreateBucketIfNotExists([]byte(f.ProjectID))
		if err != nil {
			return err
		}
		meta := fileMeta{
			Path:      f.Path,
			Name:      f.Name,
			Extension: f.Extension,
			Content:   f.Content,
			Size:      f.Size,
			Imports:   f.Imports,
			CreatedAt: f.CreatedAt.Unix(),
			UpdatedAt: f.UpdatedAt.Unix(),
		}
		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		return b.Put([]byte(f.ID), data)
	})
}

func (s *BoltStore) ListFiles(projectID string) ([]domain.File, error) {
	var files []domain.File
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketFiles).Bucket([]byte(projectID))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var meta fileMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return err
			}
			files = append(files, domain.File{
				ID:        string(k),
				ProjectID: projectID,
				Path:      meta.Path,
				Name:      meta.Name,
				Extension: meta.Extension,
				Content:   meta.Content,
				Size:      meta.Size,
				Imports:   meta.Imports,
				CreatedAt: time.Unix(meta.CreatedAt, 0),
				UpdatedAt: time.Unix(meta.UpdatedAt, 0),
			})
			return nil
		})
	})
	return files, err
}

func (s *BoltStore) DeleteFilesByProject(projectID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketFiles)
		if b.Bucket([]byte(projectID)) == nil {
			return nil
		}
		err := b.DeleteBucket([]byte(projectID))
		if errors.Is(err, bbolt.ErrBucketNotFound) {
			return nil
		}
		return err
	})
}

func (s *BoltStore) PutPrompt(p domain.Prompt) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.Bucket(bucketPrompts).CreateBucketIfNotExists([]byte(p.ProjectID))
		if err != nil {
			return err
		}
		meta := promptMeta{
			Title:     p.Title,
			Content:   p.Content,
			Tags:      p.Tags,
			CreatedAt: p.CreatedAt.Unix(),
			UpdatedAt: p.UpdatedAt.Unix(),
		}
		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		return b.Put([]byte(p.ID), data)
	})
}

func (s *BoltStore) ListPrompts(projectID string) ([]domain.Prompt, error) {
	var prompts []domain.Prompt
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketPrompts).Bucket([]byte(projectID))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var meta promptMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return err
			}
			prompts = append(prompts, domain.Prompt{
				ID:        string(k),
				ProjectID: projectID,
				Title:     meta.Title,
				Content:   meta.Content,
				Tags:      meta.Tags,
				CreatedAt: time.Unix(meta.CreatedAt, 0),
				UpdatedAt: time.Unix(meta.UpdatedAt, 0),
			})
			return nil
		})
	})
	return prompts, err
}
