package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oxquiz/oxquiz/internal/game/quiz"
)

// QuizRepository provides quiz persistence and serves as the quiz provider
// for room supplies.
type QuizRepository struct {
	db        *pgxpool.Pool
	batchSize int
}

// NewQuizRepository creates a QuizRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool; batchSize >= 1.
func NewQuizRepository(db *pgxpool.Pool, batchSize int) *QuizRepository {
	return &QuizRepository{db: db, batchSize: batchSize}
}

// FetchQuizBatch returns a random batch of quizzes. Deduplication against a
// room's history is the supply's job; the repository may return quizzes a
// room has already seen.
//
// Postcondition: Returns up to batchSize quizzes (possibly zero).
func (r *QuizRepository) FetchQuizBatch(ctx context.Context) ([]quiz.Quiz, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, question, answer
		 FROM quizzes
		 ORDER BY random()
		 LIMIT $1`,
		r.batchSize,
	)
	if err != nil {
		return nil, fmt.Errorf("querying quizzes: %w", err)
	}
	defer rows.Close()

	var batch []quiz.Quiz
	for rows.Next() {
		var q quiz.Quiz
		if err := rows.Scan(&q.ID, &q.Question, &q.Answer); err != nil {
			return nil, fmt.Errorf("scanning quiz: %w", err)
		}
		batch = append(batch, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quizzes: %w", err)
	}
	return batch, nil
}

// Insert stores a new quiz and returns its assigned ID. Used by the content
// importer.
//
// Precondition: question must be non-empty; answer must be "O" or "X".
func (r *QuizRepository) Insert(ctx context.Context, question, answer string) (int64, error) {
	if answer != quiz.AnswerO && answer != quiz.AnswerX {
		return 0, fmt.Errorf("invalid answer %q: must be %q or %q", answer, quiz.AnswerO, quiz.AnswerX)
	}
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO quizzes (question, answer)
		 VALUES ($1, $2)
		 RETURNING id`,
		question, answer,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting quiz: %w", err)
	}
	return id, nil
}

// Count returns the number of stored quizzes.
func (r *QuizRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM quizzes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting quizzes: %w", err)
	}
	return n, nil
}
