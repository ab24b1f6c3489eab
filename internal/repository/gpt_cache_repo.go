package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GPTCacheRepo persists AI classifier responses keyed by content hash.
// Entries survive across runs and are never invalidated here; it
// implements gpt.ResponseCache.
type GPTCacheRepo struct {
	pool      *pgxpool.Pool
	modelName string
}

func NewGPTCacheRepo(pool *pgxpool.Pool, modelName string) *GPTCacheRepo {
	return &GPTCacheRepo{pool: pool, modelName: modelName}
}

// Get returns the cached raw response for a key, or nil on a miss.
func (r *GPTCacheRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var output string
	err := r.pool.QueryRow(ctx,
		`SELECT output_json FROM gpt_cache WHERE cache_key = $1`, key).Scan(&output)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(output), nil
}

// Set stores a raw response under its content-hash key.
func (r *GPTCacheRepo) Set(ctx context.Context, key, inputText string, response []byte) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO gpt_cache (cache_key, input_text, output_json, model)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cache_key) DO UPDATE SET
			output_json = excluded.output_json,
			model = excluded.model`,
		key, inputText, string(response), r.modelName)
	return err
}
