package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NicknameRepository stores the adjective and noun lists that nickname pools
// combine into display names. It serves as the nickname-part provider.
type NicknameRepository struct {
	db *pgxpool.Pool
}

// NewNicknameRepository creates a NicknameRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewNicknameRepository(db *pgxpool.Pool) *NicknameRepository {
	return &NicknameRepository{db: db}
}

// FetchAdjectives returns all stored adjectives in insertion order.
func (r *NicknameRepository) FetchAdjectives(ctx context.Context) ([]string, error) {
	return r.fetchWords(ctx, "nickname_adjectives")
}

// FetchNouns returns all stored nouns in insertion order.
func (r *NicknameRepository) FetchNouns(ctx context.Context) ([]string, error) {
	return r.fetchWords(ctx, "nickname_nouns")
}

// InsertAdjective stores a new adjective. Used by the content importer.
func (r *NicknameRepository) InsertAdjective(ctx context.Context, word string) error {
	return r.insertWord(ctx, "nickname_adjectives", word)
}

// InsertNoun stores a new noun. Used by the content importer.
func (r *NicknameRepository) InsertNoun(ctx context.Context, word string) error {
	return r.insertWord(ctx, "nickname_nouns", word)
}

func (r *NicknameRepository) fetchWords(ctx context.Context, table string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT word FROM %s ORDER BY id`, table),
	)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", table, err)
	}
	return words, nil
}

func (r *NicknameRepository) insertWord(ctx context.Context, table, word string) error {
	if word == "" {
		return fmt.Errorf("empty word for %s", table)
	}
	_, err := r.db.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (word) VALUES ($1) ON CONFLICT DO NOTHING`, table),
		word,
	)
	if err != nil {
		return fmt.Errorf("inserting into %s: %w", table, err)
	}
	return nil
}
