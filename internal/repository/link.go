package repository

import (
	"context"
	"fmt"

	"pcsense/buylinks/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LinkRepository keeps an audit trail of generated buy links.
type LinkRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveLinks(ctx context.Context, links []domain.AddedLink) error
}

type linkRepository struct {
	db *pgxpool.Pool
}

func NewLinkRepository(db *pgxpool.Pool) LinkRepository {
	return &linkRepository{
		db: db,
	}
}

func (r *linkRepository) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS buy_links (
		category   TEXT NOT NULL,
		name       TEXT NOT NULL,
		link       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (category, name)
	)`
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create buy_links table: %w", err)
	}
	return nil
}

func (r *linkRepository) SaveLinks(ctx context.Context, links []domain.AddedLink) error {
	if len(links) == 0 {
		return nil
	}

	query := `
	INSERT INTO buy_links (category, name, link, created_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (category, name)
	DO UPDATE SET link = $3, created_at = now()`

	batch := &pgx.Batch{}
	for _, link := range links {
		batch.Queue(query, link.Category.String(), link.Name, link.Link)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for _, link := range links {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to save buy link for %s %q: %w", link.Category, link.Name, err)
		}
	}

	return nil
}
