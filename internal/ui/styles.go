// Package ui renders command output for the terminal.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Accent highlights paths and tags.
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))

	// Muted is for secondary info and hints.
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold is for emphasis.
	Bold = lipgloss.NewStyle().Bold(true)
)

// Status symbols; no colors for success or failure.
const (
	SymbolOK   = "✓"
	SymbolSkip = "·"
	SymbolFail = "✗"
)
