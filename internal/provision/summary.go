package provision

import (
	"github.com/fluxwms/dashforge/internal/superset"
	"github.com/google/uuid"
)

// Status is the terminal state of one resource in a run.
type Status string

const (
	StatusCreated Status = "created"
	StatusExists  Status = "exists"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Entry is one resource's outcome.
type Entry struct {
	Kind   superset.Kind
	Name   string
	Status Status
}

// Summary is the per-resource tally of a provisioning run. Every attempted
// or skipped resource appears exactly once, in DAG traversal order.
type Summary struct {
	RunID   string
	Entries []Entry
}

// NewSummary returns an empty summary with a fresh run id.
func NewSummary() *Summary {
	return &Summary{RunID: uuid.New().String()}
}

// Add appends one outcome.
func (s *Summary) Add(kind superset.Kind, name string, status Status) {
	s.Entries = append(s.Entries, Entry{Kind: kind, Name: name, Status: status})
}

// Count returns how many entries carry the given status.
func (s *Summary) Count(status Status) int {
	n := 0
	for _, e := range s.Entries {
		if e.Status == status {
			n++
		}
	}
	return n
}

// Available reports whether the named resource ended the run usable, either
// created by this run or found pre-existing.
func (s *Summary) Available(kind superset.Kind, name string) bool {
	for _, e := range s.Entries {
		if e.Kind == kind && e.Name == name {
			return e.Status == StatusCreated || e.Status == StatusExists
		}
	}
	return false
}
