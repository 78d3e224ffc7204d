package internal

import (
	"io"
	"log/slog"

	"github.com/starford/mad/internal/redir"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	logger  *slog.Logger
	chooser redir.Chooser
	out     io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogger replaces the default stderr text logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *application) {
		a.logger = logger
	}
}

// WithChooser sets how redir picks among several frontmatter tags.
func WithChooser(c redir.Chooser) Option {
	return func(a *application) {
		a.chooser = c
	}
}

// WithLogOutput sets where the default logger writes.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.out = w
	}
}
