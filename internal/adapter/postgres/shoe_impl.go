package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/user/speedsale-scraper/internal/entity"
)

// ShoeRepoImpl provides a concrete implementation for the ShoeRepository interface using PostgreSQL.
type ShoeRepoImpl struct {
	db *sql.DB
}

// NewShoeRepo creates a new instance of ShoeRepoImpl.
func NewShoeRepo(db *sql.DB) *ShoeRepoImpl {
	return &ShoeRepoImpl{db: db}
}

// FindBySlugs loads every shoe whose slug is in slugs.
func (r *ShoeRepoImpl) FindBySlugs(ctx context.Context, slugs []string) (map[string]*entity.Shoe, error) {
	shoes := make(map[string]*entity.Shoe, len(slugs))
	if len(slugs) == 0 {
		return shoes, nil
	}

	query := `
		SELECT id, brand, model, slug, price, category, gender, image_url, last_scraped
		FROM shoes
		WHERE slug = ANY($1);
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(slugs))
	if err != nil {
		return nil, fmt.Errorf("find shoes by slug: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s                          entity.Shoe
			price                      sql.NullFloat64
			category, gender, imageURL sql.NullString
			lastScraped                sql.NullTime
		)
		if err := rows.Scan(&s.ID, &s.Brand, &s.Model, &s.Slug, &price, &category, &gender, &imageURL, &lastScraped); err != nil {
			return nil, fmt.Errorf("scan shoe: %w", err)
		}
		s.ListPrice = price.Float64
		s.Category = category.String
		s.Gender = gender.String
		s.ImageURL = imageURL.String
		s.LastScraped = timePtr(lastScraped)
		shoes[s.Slug] = &s
	}
	return shoes, rows.Err()
}

// Create inserts a shoe. A concurrent insert of the same slug refreshes the
// existing row instead of failing.
func (r *ShoeRepoImpl) Create(ctx context.Context, shoe *entity.Shoe) (string, error) {
	query := `
		INSERT INTO shoes (brand, model, slug, price, category, gender, image_url, last_scraped)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (slug) DO UPDATE SET
			price = EXCLUDED.price,
			last_scraped = EXCLUDED.last_scraped,
			updated_at = NOW()
		RETURNING id;
	`
	var id string
	err := r.db.QueryRowContext(ctx, query,
		shoe.Brand,
		shoe.Model,
		shoe.Slug,
		shoe.ListPrice,
		nullIfEmpty(shoe.Category),
		nullIfEmpty(shoe.Gender),
		nullIfEmpty(shoe.ImageURL),
		shoe.LastScraped,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create shoe %s: %w", shoe.Slug, mapError(err))
	}
	return id, nil
}

// UpdateSighting refreshes the list price and last-scraped timestamp.
func (r *ShoeRepoImpl) UpdateSighting(ctx context.Context, id string, listPrice float64, seenAt time.Time) error {
	query := `UPDATE shoes SET price = $2, last_scraped = $3, updated_at = NOW() WHERE id = $1;`
	if _, err := r.db.ExecContext(ctx, query, id, listPrice, seenAt); err != nil {
		return fmt.Errorf("update shoe %s: %w", id, err)
	}
	return nil
}

// Count returns the number of shoes in the catalog.
func (r *ShoeRepoImpl) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shoes;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count shoes: %w", err)
	}
	return n, nil
}
