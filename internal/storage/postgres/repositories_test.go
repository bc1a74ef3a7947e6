package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxquiz/oxquiz/internal/game/quiz"
	pgstore "github.com/oxquiz/oxquiz/internal/storage/postgres"
	"github.com/oxquiz/oxquiz/internal/testutil"
)

func setup(t *testing.T) *testutil.PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed integration test in short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	pc.ApplySchema(t)
	return pc
}

func TestQuizRepository_InsertAndFetch(t *testing.T) {
	pc := setup(t)
	ctx := context.Background()
	repo := pgstore.NewQuizRepository(pc.RawPool, 10)

	id1, err := repo.Insert(ctx, "the sun is a star", quiz.AnswerO)
	require.NoError(t, err)
	id2, err := repo.Insert(ctx, "penguins can fly", quiz.AnswerX)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	batch, err := repo.FetchQuizBatch(ctx)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	for _, q := range batch {
		assert.NotEmpty(t, q.Question)
		assert.Contains(t, []string{quiz.AnswerO, quiz.AnswerX}, q.Answer)
	}
}

func TestQuizRepository_InsertRejectsBadAnswer(t *testing.T) {
	pc := setup(t)
	repo := pgstore.NewQuizRepository(pc.RawPool, 10)
	_, err := repo.Insert(context.Background(), "maybe?", "Y")
	assert.Error(t, err)
}

func TestQuizRepository_BatchSizeLimit(t *testing.T) {
	pc := setup(t)
	ctx := context.Background()
	repo := pgstore.NewQuizRepository(pc.RawPool, 2)

	for _, q := range []string{"q1", "q2", "q3", "q4"} {
		_, err := repo.Insert(ctx, q, quiz.AnswerO)
		require.NoError(t, err)
	}

	batch, err := repo.FetchQuizBatch(ctx)
	require.NoError(t, err)
	assert.Len(t, batch, 2)
}

func TestNicknameRepository_InsertAndFetch(t *testing.T) {
	pc := setup(t)
	ctx := context.Background()
	repo := pgstore.NewNicknameRepository(pc.RawPool)

	require.NoError(t, repo.InsertAdjective(ctx, "brave"))
	require.NoError(t, repo.InsertAdjective(ctx, "sleepy"))
	require.NoError(t, repo.InsertNoun(ctx, "otter"))

	// Duplicate inserts are ignored, not errors.
	require.NoError(t, repo.InsertAdjective(ctx, "brave"))

	adjectives, err := repo.FetchAdjectives(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"brave", "sleepy"}, adjectives)

	nouns, err := repo.FetchNouns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"otter"}, nouns)
}
