package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/resume-builder/internal/backend"
	"github.com/jonathan/resume-builder/internal/resume"
)

// loadStrategy is one source a document may be loaded from. Fetch returns
// backend.ErrNotFound when the source has nothing for this user, which is an
// ordinary outcome rather than a failure.
type loadStrategy struct {
	name  string
	fetch func(ctx context.Context) (*resume.Document, error)
}

// loadResult is the outcome of running an ordered strategy chain.
type loadResult struct {
	doc    *resume.Document
	source string
	// degraded collects non-fatal strategy failures that were skipped over.
	degraded []error
}

// runStrategies tries each strategy in order and returns the first document
// found. Not-found moves to the next strategy. Other failures are fatal when
// strict is set (required loads, master mode); otherwise they are recorded
// and the chain continues, since the user can still work from a later
// source. An exhausted chain yields an empty document.
func runStrategies(ctx context.Context, strategies []loadStrategy, strict bool) (loadResult, error) {
	var result loadResult
	for _, s := range strategies {
		doc, err := s.fetch(ctx)
		if err != nil {
			if errors.Is(err, backend.ErrNotFound) {
				continue
			}
			if strict {
				return loadResult{}, &LoadError{Message: s.name, Cause: err}
			}
			result.degraded = append(result.degraded, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		result.doc = doc
		result.source = s.name
		return result, nil
	}
	empty := resume.EmptyDocument()
	result.doc = &empty
	result.source = "empty"
	return result, nil
}
