package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/user/speedsale-scraper/internal/entity"
	"github.com/user/speedsale-scraper/internal/repository"
)

const retailerColumns = `id, name, url, enabled, last_scraped, scraping_interval_hours`

// RetailerRepoImpl provides a concrete implementation for the RetailerRepository interface using PostgreSQL.
type RetailerRepoImpl struct {
	db *sql.DB
}

// NewRetailerRepo creates a new instance of RetailerRepoImpl.
func NewRetailerRepo(db *sql.DB) *RetailerRepoImpl {
	return &RetailerRepoImpl{db: db}
}

func scanRetailer(row rowScanner) (*entity.RetailerState, error) {
	var (
		s           entity.RetailerState
		lastScraped sql.NullTime
		interval    sql.NullInt64
	)
	if err := row.Scan(&s.ID, &s.Name, &s.URL, &s.Enabled, &lastScraped, &interval); err != nil {
		return nil, err
	}
	s.LastScraped = timePtr(lastScraped)
	s.ScrapingIntervalHours = int(interval.Int64)
	return &s, nil
}

// Get returns the persisted state of one retailer.
func (r *RetailerRepoImpl) Get(ctx context.Context, id string) (*entity.RetailerState, error) {
	query := `SELECT ` + retailerColumns + ` FROM retailers WHERE id = $1;`
	s, err := scanRetailer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrRetailerNotFound
		}
		return nil, fmt.Errorf("get retailer %s: %w", id, err)
	}
	return s, nil
}

// List returns all retailers ordered by id.
func (r *RetailerRepoImpl) List(ctx context.Context) ([]*entity.RetailerState, error) {
	query := `SELECT ` + retailerColumns + ` FROM retailers ORDER BY id;`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list retailers: %w", err)
	}
	defer rows.Close()

	var out []*entity.RetailerState
	for rows.Next() {
		s, err := scanRetailer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan retailer: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// MarkScraped records when the retailer was last scraped.
func (r *RetailerRepoImpl) MarkScraped(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE retailers SET last_scraped = $2, updated_at = NOW() WHERE id = $1;`
	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("mark retailer %s scraped: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrRetailerNotFound
	}
	return nil
}

// SaveProfile upserts the retailer's name, url and scraping_config. The
// enabled flag is only written when the row is first created.
func (r *RetailerRepoImpl) SaveProfile(ctx context.Context, profile *entity.RetailerProfile) error {
	cfg, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode scraping config for %s: %w", profile.ID, err)
	}

	query := `
		INSERT INTO retailers (id, name, url, enabled, scraping_config)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			url = EXCLUDED.url,
			scraping_config = EXCLUDED.scraping_config,
			updated_at = NOW();
	`
	if _, err := r.db.ExecContext(ctx, query, profile.ID, profile.Name, profile.BaseURL, profile.Enabled, cfg); err != nil {
		return fmt.Errorf("save retailer %s: %w", profile.ID, err)
	}
	return nil
}
