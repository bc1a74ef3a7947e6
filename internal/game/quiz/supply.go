// Package quiz provides the room's question backlog: an ordered list of
// not-yet-asked quizzes, refilled on demand from an external provider and
// deduplicated by quiz identity.
package quiz

import (
	"context"
	"errors"
	"fmt"
)

// Answer values for OX quizzes.
const (
	AnswerO = "O"
	AnswerX = "X"
)

// Quiz is one true/false question.
type Quiz struct {
	ID       int64
	Question string
	Answer   string
}

// ErrSupplyExhausted is returned when the provider has no new quizzes and
// the backlog is empty for the requested round. The round cannot start.
var ErrSupplyExhausted = errors.New("quiz supply exhausted")

// Provider fetches a batch of quizzes from external storage.
type Provider interface {
	FetchQuizBatch(ctx context.Context) ([]Quiz, error)
}

// Supply holds the ordered backlog for one room. Quizzes are consumed in the
// order first fetched; duplicates (by ID) across the room's lifetime are
// filtered at ingestion, never at selection. Supply is not safe for
// concurrent use; the owning room serializes access.
type Supply struct {
	provider Provider
	backlog  []Quiz
	seen     map[int64]bool
}

// NewSupply creates an empty Supply backed by the given provider.
//
// Precondition: provider must be non-nil.
func NewSupply(provider Provider) *Supply {
	return &Supply{
		provider: provider,
		seen:     make(map[int64]bool),
	}
}

// Len returns the number of quizzes ingested so far (asked and pending).
func (s *Supply) Len() int { return len(s.backlog) }

// Next returns the quiz for the given round index, fetching a batch from
// the provider if the backlog does not reach that far yet.
//
// Precondition: round >= 0; rounds are requested in increasing order.
// Postcondition: Returns the quiz for the round, or ErrSupplyExhausted if
// neither the backlog nor the provider can supply one. A provider error
// leaves the backlog unchanged.
func (s *Supply) Next(ctx context.Context, round int) (Quiz, error) {
	if round < len(s.backlog) {
		return s.backlog[round], nil
	}

	batch, err := s.provider.FetchQuizBatch(ctx)
	if err != nil {
		return Quiz{}, fmt.Errorf("fetching quiz batch: %w", err)
	}
	for _, q := range batch {
		if s.seen[q.ID] {
			continue
		}
		s.seen[q.ID] = true
		s.backlog = append(s.backlog, q)
	}

	if round >= len(s.backlog) {
		return Quiz{}, ErrSupplyExhausted
	}
	return s.backlog[round], nil
}

// HasNext reports whether a quiz for the given round is already ingested.
// It never touches the provider.
func (s *Supply) HasNext(round int) bool {
	return round < len(s.backlog)
}
