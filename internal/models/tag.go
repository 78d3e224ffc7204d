// Package models defines the domain types shared by the tag engines.
package models

import (
	"slices"
	"strings"
)

// TagPath is a hierarchical tag such as ["project", "client", "acme"].
// Segments never contain "/", are trimmed, and are never empty.
type TagPath []string

// ParseTagPath splits a slash-joined tag string into a TagPath.
// Returns nil when s holds no non-empty segment.
func ParseTagPath(s string) TagPath {
	var out TagPath
	for _, part := range strings.Split(s, "/") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// NewTagPath builds a TagPath from segments, normalising any "/" they contain.
func NewTagPath(segments ...string) TagPath {
	return ParseTagPath(strings.Join(segments, "/"))
}

// String returns the slash-joined form ("project/client/acme").
func (t TagPath) String() string {
	return strings.Join(t, "/")
}

// IsZero reports whether the path has no segments.
func (t TagPath) IsZero() bool {
	return len(t) == 0
}

// Equal compares two paths segment by segment.
func (t TagPath) Equal(other TagPath) bool {
	return slices.Equal(t, other)
}

// HasPrefix reports whether prefix is an ancestor of (or equal to) t.
func (t TagPath) HasPrefix(prefix TagPath) bool {
	if len(prefix) > len(t) {
		return false
	}
	return slices.Equal(t[:len(prefix)], prefix)
}

// IsPathSafe reports whether every segment can name a directory, that is,
// none of them is "." or "..".
func (t TagPath) IsPathSafe() bool {
	for _, seg := range t {
		if seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

// MarshalText implements encoding.TextMarshaler.
func (t TagPath) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TagPath) UnmarshalText(text []byte) error {
	*t = ParseTagPath(string(text))
	return nil
}

// DedupeTags removes duplicates by slash string, keeping first-seen order.
func DedupeTags(tags []TagPath) []TagPath {
	seen := make(map[string]struct{}, len(tags))
	out := make([]TagPath, 0, len(tags))
	for _, t := range tags {
		if t.IsZero() {
			continue
		}
		key := t.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
