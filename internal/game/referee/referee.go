// Package referee decides round outcomes. The coordinator treats the
// survival rule as an injected predicate so game variants can swap it
// without touching round bookkeeping.
package referee

import (
	"github.com/oxquiz/oxquiz/internal/game/character"
	"github.com/oxquiz/oxquiz/internal/game/quiz"
)

// Referee judges whether a character survives the given quiz.
type Referee interface {
	Survives(q quiz.Quiz, c *character.Character) bool
}

// SideReferee implements the classic OX field rule: characters standing in
// the left half of the grid answer "O", the right half answer "X", and a
// character survives when its side matches the quiz answer. Unplaced
// characters are always eliminated.
type SideReferee struct {
	// Columns is the grid width; the O side is columns [0, Columns/2).
	Columns int
}

// NewSideReferee creates a SideReferee for a grid of the given width.
//
// Precondition: columns >= 2.
func NewSideReferee(columns int) *SideReferee {
	return &SideReferee{Columns: columns}
}

// Survives reports whether c stands on the side matching q.Answer.
func (r *SideReferee) Survives(q quiz.Quiz, c *character.Character) bool {
	if !c.Placed {
		return false
	}
	side := quiz.AnswerX
	if c.X < r.Columns/2 {
		side = quiz.AnswerO
	}
	return side == q.Answer
}

// Func adapts a plain function to the Referee interface.
type Func func(q quiz.Quiz, c *character.Character) bool

// Survives calls the wrapped function.
func (f Func) Survives(q quiz.Quiz, c *character.Character) bool {
	return f(q, c)
}
