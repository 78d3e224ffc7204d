// Package rename renames a directory on one side of the work/documentation
// mapping and mirrors the rename on the other side.
package rename

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/mad/internal/apperr"
	"github.com/starford/mad/internal/dirmap"
	"github.com/starford/mad/internal/models"
	"github.com/starford/mad/internal/paths"
	"github.com/starford/mad/internal/retag"
)

// Retagger retags every note below a directory.
type Retagger interface {
	Dir(dir string, opts retag.Options) (models.Report, error)
}

// Options controls a rename.
type Options struct {
	NoRetag bool
}

// Result describes a completed rename.
type Result struct {
	Direction dirmap.Direction
	OldWork   string
	NewWork   string
	OldDoc    string
	NewDoc    string
	// Retag is nil when the follow-up retag was disabled.
	Retag *models.Report
}

// Engine performs paired directory renames.
type Engine struct {
	index     *dirmap.Index
	retagger  Retagger
	logger    *slog.Logger
	renameDir func(oldPath, newPath string) error
}

// New returns an Engine resolving directories through index.
func New(index *dirmap.Index, retagger Retagger, logger *slog.Logger) *Engine {
	return &Engine{index: index, retagger: retagger, logger: logger, renameDir: os.Rename}
}

// ValidateName checks that name is usable as a single directory name.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("rename: %w: empty name", apperr.ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("rename: %w: %q", apperr.ErrInvalidName, name)
	case strings.ContainsRune(name, '/') || strings.ContainsRune(name, os.PathSeparator):
		return fmt.Errorf("rename: %w: %q contains a path separator", apperr.ErrInvalidName, name)
	}
	return nil
}

type step struct{ from, to string }

// Rename renames dir, which lies in either a mapped work tree or the
// documentation tree, to newName, and renames its counterpart to the same
// name. All checks run before the first rename. If the second rename fails
// the first one is undone; ErrInconsistent is returned only when that undo
// fails as well.
func (e *Engine) Rename(dir, newName string, opts Options) (*Result, error) {
	if err := ValidateName(newName); err != nil {
		return nil, err
	}

	res := &Result{Direction: e.index.Direction(dir)}
	var m dirmap.Match
	var err error
	switch res.Direction {
	case dirmap.FromWork:
		m, err = e.index.ResolveWork(dir)
	case dirmap.FromDoc:
		m, err = e.index.ResolveDoc(dir)
	default:
		err = fmt.Errorf("rename: %w: %s is in neither the documentation tree nor a mapped work tree", apperr.ErrNoMapping, dir)
	}
	if err != nil {
		return nil, err
	}
	if m.Rel == "" {
		return nil, fmt.Errorf("rename: %w: %s is a mapping root, change dir_mappings instead", apperr.ErrInvalidName, dir)
	}

	res.OldWork, res.OldDoc = m.WorkDir, m.DocDir
	res.NewWork = filepath.Join(filepath.Dir(m.WorkDir), newName)
	res.NewDoc = filepath.Join(filepath.Dir(m.DocDir), newName)

	if err := precheck(res); err != nil {
		return nil, err
	}

	steps := [2]step{{res.OldDoc, res.NewDoc}, {res.OldWork, res.NewWork}}
	if res.Direction == dirmap.FromDoc {
		steps[0], steps[1] = steps[1], steps[0]
	}
	if err := e.apply(steps); err != nil {
		return nil, err
	}
	e.logger.Info("rename: done",
		slog.String("from", res.Direction.String()),
		slog.String("work", res.NewWork),
		slog.String("doc", res.NewDoc))

	if opts.NoRetag || e.retagger == nil {
		return res, nil
	}
	report, err := e.retagger.Dir(res.NewDoc, retag.Options{NoBackup: true})
	if err != nil {
		return res, fmt.Errorf("rename: retag %s: %w", res.NewDoc, err)
	}
	res.Retag = &report
	return res, nil
}

func precheck(res *Result) error {
	for _, src := range []string{res.OldWork, res.OldDoc} {
		if !paths.IsDir(src) {
			return fmt.Errorf("rename: %w: source directory %s", apperr.ErrNotFound, src)
		}
	}
	for _, dst := range []string{res.NewWork, res.NewDoc} {
		if paths.Exists(dst) {
			return fmt.Errorf("rename: %w: %s", apperr.ErrAlreadyExists, dst)
		}
	}
	return nil
}

func (e *Engine) apply(steps [2]step) error {
	first, second := steps[0], steps[1]
	if err := e.renameDir(first.from, first.to); err != nil {
		return fmt.Errorf("rename: %s -> %s: %w", first.from, first.to, err)
	}
	e.logger.Debug("rename: renamed", slog.String("from", first.from), slog.String("to", first.to))

	err := e.renameDir(second.from, second.to)
	if err == nil {
		e.logger.Debug("rename: renamed", slog.String("from", second.from), slog.String("to", second.to))
		return nil
	}

	e.logger.Warn("rename: second rename failed, rolling back",
		slog.String("path", second.from), slog.String("error", err.Error()))
	if rbErr := e.renameDir(first.to, first.from); rbErr != nil {
		return fmt.Errorf("rename: %w: %s was renamed to %s but %s -> %s failed (%v) and the rollback failed (%v)",
			apperr.ErrInconsistent, first.from, first.to, second.from, second.to, err, rbErr)
	}
	return fmt.Errorf("rename: %s -> %s: %w (rolled back)", second.from, second.to, err)
}
