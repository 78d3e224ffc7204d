package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/mad/internal/apperr"
	"github.com/starford/mad/internal/paths"
)

const backupStamp = "20060102_150405"

// FS implements Provider backed by the local file system.
type FS struct {
	root      string // canonical path to vault directory
	backupDir string
	excluded  []string
	now       func() time.Time
}

// FSOption configures an FS.
type FSOption func(*FS)

// WithBackupDir sets the flat directory backups are copied into.
// Relative paths are resolved against the vault root.
func WithBackupDir(dir string) FSOption {
	return func(f *FS) {
		f.backupDir = dir
	}
}

// WithExcludedDirs skips the given directories (and everything below) when listing.
func WithExcludedDirs(dirs ...string) FSOption {
	return func(f *FS) {
		f.excluded = append(f.excluded, dirs...)
	}
}

// WithClock overrides the clock used for backup timestamps.
func WithClock(now func() time.Time) FSOption {
	return func(f *FS) {
		f.now = now
	}
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string, opts ...FSOption) (*FS, error) {
	abs, err := paths.Canonical(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}

	f := &FS{root: abs, backupDir: filepath.Join(".arc", "backups"), now: time.Now}
	for _, opt := range opts {
		opt(f)
	}

	if f.backupDir, err = f.resolve(f.backupDir); err != nil {
		return nil, fmt.Errorf("storage: backup dir: %w", err)
	}
	for i, dir := range f.excluded {
		if f.excluded[i], err = paths.Canonical(dir); err != nil {
			return nil, fmt.Errorf("storage: excluded dir: %w", err)
		}
	}
	return f, nil
}

// Root returns the canonical vault root.
func (f *FS) Root() string {
	return f.root
}

// resolve turns p into a canonical absolute path and rejects any result
// that escapes the vault root.
func (f *FS) resolve(p string) (string, error) {
	if p == "" {
		return f.root, nil
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(f.root, p)
	}
	abs, err := paths.Canonical(filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !paths.Within(f.root, abs) {
		return "", fmt.Errorf("storage: %w: %s is not inside vault %s", apperr.ErrOutsideRoot, p, f.root)
	}
	return abs, nil
}

func (f *FS) isExcluded(dir string) bool {
	for _, ex := range f.excluded {
		if dir == ex {
			return true
		}
	}
	return false
}

// List walks dir and returns the path of every .md file in lexical order.
func (f *FS) List(dir string) ([]string, error) {
	base, err := f.resolve(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != base && (paths.IsHidden(d.Name()) || f.isExcluded(p)) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".md") {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", base, err)
	}
	return out, nil
}

// Read returns the raw bytes of a vault file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
// The mode of an existing file is preserved.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.resolve(path)
	if err != nil {
		return err
	}
	perm := os.FileMode(0o644)
	if info, err := os.Stat(abs); err == nil {
		perm = info.Mode().Perm()
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".mad-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("storage: chmod temp: %w", err)
	}
	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Move renames a file within the vault. An existing destination is an
// apperr.ErrAlreadyExists error; nothing is overwritten.
func (f *FS) Move(oldPath, newPath string) error {
	absOld, err := f.resolve(oldPath)
	if err != nil {
		return err
	}
	absNew, err := f.resolve(newPath)
	if err != nil {
		return err
	}
	if paths.Exists(absNew) {
		return fmt.Errorf("storage: move: %w: %s", apperr.ErrAlreadyExists, absNew)
	}
	if err := os.MkdirAll(filepath.Dir(absNew), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir for move: %w", err)
	}
	if err := os.Rename(absOld, absNew); err != nil {
		return fmt.Errorf("storage: move: %w", err)
	}
	return nil
}

// Backup copies path to <backupDir>/<stem>_<YYYYMMDD_HHMMSS>.md.bak.
// Backups are flat: the source directory structure is not kept.
func (f *FS) Backup(path string) (string, error) {
	abs, err := f.resolve(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(f.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir backups: %w", err)
	}

	dest := f.backupName(filepath.Base(abs))
	src, err := os.Open(abs)
	if err != nil {
		return "", fmt.Errorf("storage: backup %s: %w", path, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: backup %s: %w", path, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dest)
		return "", fmt.Errorf("storage: backup %s: %w", path, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("storage: backup %s: %w", path, err)
	}
	return dest, nil
}

// backupName picks an unused backup file name for filename.
func (f *FS) backupName(filename string) string {
	stem, ext := filename, ".bak"
	if s, ok := strings.CutSuffix(filename, ".md"); ok {
		stem, ext = s, ".md.bak"
	}
	base := stem + "_" + f.now().Format(backupStamp)
	name := filepath.Join(f.backupDir, base+ext)
	for i := 1; ; i++ {
		if _, err := os.Lstat(name); errors.Is(err, fs.ErrNotExist) {
			return name
		}
		name = filepath.Join(f.backupDir, fmt.Sprintf("%s_%d%s", base, i, ext))
	}
}
