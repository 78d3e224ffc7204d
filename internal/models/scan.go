package models

// ScanItem is the tag classification of one document.
type ScanItem struct {
	Path          string    `json:"path"`
	PrimaryTag    TagPath   `json:"primary_tag,omitempty"`
	SecondaryTags []TagPath `json:"secondary_tags"`
}

// HasPrimary reports whether the document carries a primary tag marker.
func (s ScanItem) HasPrimary() bool {
	return !s.PrimaryTag.IsZero()
}

// ItemError records the failure of one document inside a batch.
type ItemError struct {
	Path string
	Err  error
}

func (e ItemError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e ItemError) Unwrap() error {
	return e.Err
}

// Report aggregates the outcome of a batch operation.
// Updated counts rewrites (retag, migrate) or moves (redir).
type Report struct {
	Updated int
	Skipped int
	Errored int
	Errors  []ItemError
}

// Fail records a per-item error.
func (r *Report) Fail(path string, err error) {
	r.Errored++
	r.Errors = append(r.Errors, ItemError{Path: path, Err: err})
}

// Add merges other into r.
func (r *Report) Add(other Report) {
	r.Updated += other.Updated
	r.Skipped += other.Skipped
	r.Errored += other.Errored
	r.Errors = append(r.Errors, other.Errors...)
}
