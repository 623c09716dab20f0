package superset

import (
	"context"
	"encoding/json"
	"fmt"
)

// Outcome classifies an upsert result.
type Outcome int

const (
	// OutcomeExists means the resource was found by natural key and reused.
	OutcomeExists Outcome = iota
	// OutcomeCreated means the resource was created by this run.
	OutcomeCreated
	// OutcomeAbsent means every creation attempt was rejected; the resource
	// is unavailable and dependents should be skipped.
	OutcomeAbsent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExists:
		return "exists"
	case OutcomeCreated:
		return "created"
	case OutcomeAbsent:
		return "absent"
	default:
		return "unknown"
	}
}

// Resolve queries the kind's listing endpoint and returns the id of the
// resource matching spec's natural key, or found=false when none exists.
// The full listing is matched client-side; a failed or malformed listing is
// an error, never an invitation to create (that would risk duplicates when
// the fault is in transport rather than absence).
func (s *Session) Resolve(ctx context.Context, spec Spec) (id int64, found bool, err error) {
	var out struct {
		Result []Row `json:"result"`
	}
	if err := s.GetJSON(ctx, spec.Kind().Path(), nil, &out); err != nil {
		return 0, false, fmt.Errorf("listing %ss: %w", spec.Kind(), err)
	}

	for _, row := range out.Result {
		if spec.Matches(row) {
			return row.ID(), true, nil
		}
	}
	return 0, false, nil
}

// Upsert reconciles one resource: reuse it when it already exists, otherwise
// create it by trying the spec's payloads in order. The backend's creation
// endpoint is not idempotent, so the by-name existence check is what makes
// re-running a whole provisioning pass safe.
//
// A nil error with outcome OutcomeAbsent means every creation attempt was
// rejected; the caller treats the resource as unavailable and skips its
// dependents. Errors are reserved for listing failures, which abort the run.
func (s *Session) Upsert(ctx context.Context, spec Spec) (int64, Outcome, error) {
	id, found, err := s.Resolve(ctx, spec)
	if err != nil {
		return 0, OutcomeAbsent, err
	}
	if found {
		s.logger.Debug("resource exists", "kind", spec.Kind().String(), "name", spec.Name(), "id", id)
		return id, OutcomeExists, nil
	}

	for attempt, payload := range spec.Payloads() {
		status, body, err := s.PostJSON(ctx, spec.Kind().Path(), payload)
		if err != nil {
			s.logger.Warn("creation request failed",
				"kind", spec.Kind().String(), "name", spec.Name(), "attempt", attempt+1, "error", err)
			continue
		}
		if status < 200 || status >= 300 {
			s.logger.Warn("creation rejected",
				"kind", spec.Kind().String(), "name", spec.Name(), "attempt", attempt+1, "status", status)
			continue
		}

		var created Row
		if err := json.Unmarshal(body, &created); err != nil || created.ID() == 0 {
			// An unreadable creation response is treated like a rejection.
			s.logger.Warn("creation response malformed",
				"kind", spec.Kind().String(), "name", spec.Name(), "attempt", attempt+1)
			continue
		}

		s.logger.Debug("resource created",
			"kind", spec.Kind().String(), "name", spec.Name(), "id", created.ID())
		return created.ID(), OutcomeCreated, nil
	}

	return 0, OutcomeAbsent, nil
}
