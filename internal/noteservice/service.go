// Package noteservice coordinates reading, rewriting and moving notes on top
// of storage, guarding every rewrite against concurrent edits.
package noteservice

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/starford/mad/internal/apperr"
	"github.com/starford/mad/internal/checksum"
	"github.com/starford/mad/internal/parser"
	"github.com/starford/mad/internal/paths"
	"github.com/starford/mad/internal/storage"
)

// Note is a document loaded from the vault.
type Note struct {
	Path     string
	Checksum string
	Doc      *parser.Document
}

// Service coordinates storage operations on notes.
type Service struct {
	store storage.Provider
}

// NewService creates a new note service.
func NewService(store storage.Provider) *Service {
	return &Service{store: store}
}

// Store returns the underlying storage provider.
func (s *Service) Store() storage.Provider {
	return s.store
}

// Load reads and parses the note at path. Malformed frontmatter is an error
// here because the note may be rewritten.
func (s *Service) Load(path string) (*Note, error) {
	abs, err := paths.Canonical(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	data, err := s.store.Read(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrNotFound, path)
		}
		return nil, err
	}
	doc, err := parser.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}
	return &Note{Path: abs, Checksum: checksum.Sum(data), Doc: doc}, nil
}

// Save renders the note and writes it in place. When backup is set the
// current file is copied to the backup directory first. If the file changed
// since it was loaded, Save fails with apperr.ErrConflict and writes nothing.
func (s *Service) Save(n *Note, backup bool) error {
	content, err := n.Doc.Render()
	if err != nil {
		return err
	}
	if err := s.checkUnchanged(n); err != nil {
		return err
	}
	if backup {
		if _, err := s.store.Backup(n.Path); err != nil {
			return err
		}
	}
	if err := s.store.Write(n.Path, content); err != nil {
		return err
	}
	n.Checksum = checksum.Sum(content)
	return nil
}

// Move relocates the note into destDir keeping its file name. The
// destination must not exist. Returns the new path.
func (s *Service) Move(n *Note, destDir string, backup bool) (string, error) {
	dest := filepath.Join(destDir, filepath.Base(n.Path))
	if paths.Exists(dest) {
		return "", fmt.Errorf("%w: destination %s", apperr.ErrAlreadyExists, dest)
	}
	if err := s.checkUnchanged(n); err != nil {
		return "", err
	}
	if backup {
		if _, err := s.store.Backup(n.Path); err != nil {
			return "", err
		}
	}
	if err := s.store.Move(n.Path, dest); err != nil {
		return "", err
	}
	n.Path = dest
	return dest, nil
}

// Files lists the notes under dir (hidden and excluded directories skipped).
func (s *Service) Files(dir string) ([]string, error) {
	abs, err := paths.Canonical(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	return s.store.List(abs)
}

func (s *Service) checkUnchanged(n *Note) error {
	current, err := checksum.File(n.Path)
	if err != nil {
		return err
	}
	if current != n.Checksum {
		return fmt.Errorf("%w: %s changed since it was read", apperr.ErrConflict, n.Path)
	}
	return nil
}
