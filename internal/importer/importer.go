// Package importer loads quiz and nickname content from YAML files into the
// database tables the game reads at runtime.
package importer

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oxquiz/oxquiz/internal/game/quiz"
)

// QuizStore is the subset of the quiz repository the importer writes through.
type QuizStore interface {
	Insert(ctx context.Context, question, answer string) (int64, error)
}

// NicknameStore is the subset of the nickname repository the importer writes
// through.
type NicknameStore interface {
	InsertAdjective(ctx context.Context, word string) error
	InsertNoun(ctx context.Context, word string) error
}

// Importer orchestrates content import from a YAML file into the stores.
type Importer struct {
	quizzes   QuizStore
	nicknames NicknameStore
}

// New constructs an Importer backed by the given stores.
//
// Precondition: quizzes and nicknames must be non-nil.
// Postcondition: returns a non-nil Importer.
func New(quizzes QuizStore, nicknames NicknameStore) *Importer {
	return &Importer{quizzes: quizzes, nicknames: nicknames}
}

// Report summarises one import run.
type Report struct {
	Quizzes    int
	Adjectives int
	Nouns      int
	Elapsed    time.Duration
}

// Run parses the content file at path, validates every entry, and inserts
// everything into the stores. Validation runs before any insert so a bad
// file never leaves a partial import behind.
//
// Precondition: path must name a readable YAML file.
// Postcondition: on success every entry in the file has been inserted.
func (imp *Importer) Run(ctx context.Context, path string) (*Report, error) {
	overall := time.Now()

	content, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(content); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}

	for i, q := range content.Quizzes {
		if _, err := imp.quizzes.Insert(ctx, q.Question, q.Answer); err != nil {
			return nil, fmt.Errorf("inserting quiz %d: %w", i, err)
		}
	}
	for _, w := range content.Nicknames.Adjectives {
		if err := imp.nicknames.InsertAdjective(ctx, w); err != nil {
			return nil, fmt.Errorf("inserting adjective %q: %w", w, err)
		}
	}
	for _, w := range content.Nicknames.Nouns {
		if err := imp.nicknames.InsertNoun(ctx, w); err != nil {
			return nil, fmt.Errorf("inserting noun %q: %w", w, err)
		}
	}

	return &Report{
		Quizzes:    len(content.Quizzes),
		Adjectives: len(content.Nicknames.Adjectives),
		Nouns:      len(content.Nicknames.Nouns),
		Elapsed:    time.Since(overall),
	}, nil
}

// Load reads and parses a content YAML file.
func Load(path string) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var content Content
	if err := yaml.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &content, nil
}

// Validate checks every entry in the document and reports all violations at
// once.
func Validate(content *Content) error {
	var errs []string

	for i, q := range content.Quizzes {
		if strings.TrimSpace(q.Question) == "" {
			errs = append(errs, fmt.Sprintf("quiz %d: question is empty", i))
		}
		if q.Answer != quiz.AnswerO && q.Answer != quiz.AnswerX {
			errs = append(errs, fmt.Sprintf("quiz %d: answer must be %q or %q, got %q", i, quiz.AnswerO, quiz.AnswerX, q.Answer))
		}
	}
	for i, w := range content.Nicknames.Adjectives {
		if strings.TrimSpace(w) == "" {
			errs = append(errs, fmt.Sprintf("adjective %d is empty", i))
		}
	}
	for i, w := range content.Nicknames.Nouns {
		if strings.TrimSpace(w) == "" {
			errs = append(errs, fmt.Sprintf("noun %d is empty", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
