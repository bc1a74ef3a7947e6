package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memQuizStore struct {
	inserted []QuizEntry
	failOn   string
}

func (s *memQuizStore) Insert(_ context.Context, question, answer string) (int64, error) {
	if s.failOn != "" && s.failOn == question {
		return 0, assert.AnError
	}
	s.inserted = append(s.inserted, QuizEntry{Question: question, Answer: answer})
	return int64(len(s.inserted)), nil
}

type memNicknameStore struct {
	adjectives []string
	nouns      []string
}

func (s *memNicknameStore) InsertAdjective(_ context.Context, word string) error {
	s.adjectives = append(s.adjectives, word)
	return nil
}

func (s *memNicknameStore) InsertNoun(_ context.Context, word string) error {
	s.nouns = append(s.nouns, word)
	return nil
}

func writeContent(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "content.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
	return path
}

const validDoc = `
quizzes:
  - question: "the sun is a star"
    answer: "O"
  - question: "spiders are insects"
    answer: "X"
nicknames:
  adjectives: [brave, sleepy]
  nouns: [otter]
`

func TestRun_ImportsEverything(t *testing.T) {
	quizzes := &memQuizStore{}
	nicknames := &memNicknameStore{}
	imp := New(quizzes, nicknames)

	report, err := imp.Run(context.Background(), writeContent(t, validDoc))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Quizzes)
	assert.Equal(t, 2, report.Adjectives)
	assert.Equal(t, 1, report.Nouns)
	require.Len(t, quizzes.inserted, 2)
	assert.Equal(t, "O", quizzes.inserted[0].Answer)
	assert.Equal(t, []string{"brave", "sleepy"}, nicknames.adjectives)
	assert.Equal(t, []string{"otter"}, nicknames.nouns)
}

func TestRun_RejectsBadAnswerBeforeInserting(t *testing.T) {
	doc := `
quizzes:
  - question: "first"
    answer: "O"
  - question: "second"
    answer: "Y"
`
	quizzes := &memQuizStore{}
	imp := New(quizzes, &memNicknameStore{})

	_, err := imp.Run(context.Background(), writeContent(t, doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `answer must be "O" or "X"`)
	assert.Empty(t, quizzes.inserted, "validation failure must not insert anything")
}

func TestRun_MissingFile(t *testing.T) {
	imp := New(&memQuizStore{}, &memNicknameStore{})
	_, err := imp.Run(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	content := &Content{
		Quizzes: []QuizEntry{
			{Question: "", Answer: "O"},
			{Question: "ok", Answer: "Z"},
		},
		Nicknames: NicknameParts{Adjectives: []string{" "}, Nouns: []string{"otter"}},
	}

	err := Validate(content)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quiz 0: question is empty")
	assert.Contains(t, err.Error(), "quiz 1: answer")
	assert.Contains(t, err.Error(), "adjective 0 is empty")
}
