package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/user/speedsale-scraper/internal/entity"
)

// WatchlistRepoImpl provides a concrete implementation for the WatchlistRepository interface using PostgreSQL.
type WatchlistRepoImpl struct {
	db *sql.DB
}

// NewWatchlistRepo creates a new instance of WatchlistRepoImpl.
func NewWatchlistRepo(db *sql.DB) *WatchlistRepoImpl {
	return &WatchlistRepoImpl{db: db}
}

// ListActive joins watchlists with their users and shoes. Entries whose
// shoe was removed are excluded by the inner join.
func (r *WatchlistRepoImpl) ListActive(ctx context.Context) ([]*entity.WatchlistEntry, error) {
	query := `
		SELECT w.id, w.discount, u.id, u.email, u.fname, u.sname,
			s.id, s.brand, s.model, s.slug, s.image_url, s.category, s.gender
		FROM watchlists w
		JOIN users u ON u.id = w.user_id
		JOIN shoes s ON s.id = w.shoe_id
		ORDER BY w.created_at, w.id;
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list watchlists: %w", err)
	}
	defer rows.Close()

	var entries []*entity.WatchlistEntry
	for rows.Next() {
		var (
			e                          entity.WatchlistEntry
			discount                   sql.NullFloat64
			fname, sname               sql.NullString
			imageURL, category, gender sql.NullString
		)
		if err := rows.Scan(
			&e.ID, &discount, &e.User.ID, &e.User.Email, &fname, &sname,
			&e.Shoe.ID, &e.Shoe.Brand, &e.Shoe.Model, &e.Shoe.Slug, &imageURL, &category, &gender,
		); err != nil {
			return nil, fmt.Errorf("scan watchlist: %w", err)
		}
		e.Discount = floatPtr(discount)
		if fname.Valid {
			e.User.FirstName = &fname.String
		}
		if sname.Valid {
			e.User.LastName = &sname.String
		}
		e.Shoe.ImageURL = imageURL.String
		e.Shoe.Category = category.String
		e.Shoe.Gender = gender.String
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// GetPreference returns the user's notification preference, or nil when the
// user never saved one.
func (r *WatchlistRepoImpl) GetPreference(ctx context.Context, userID string) (*entity.NotificationPreference, error) {
	query := `SELECT user_id, email_enabled, frequency FROM user_preferences WHERE user_id = $1;`

	var (
		p         entity.NotificationPreference
		enabled   sql.NullBool
		frequency sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &enabled, &frequency)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get preference for user %s: %w", userID, err)
	}
	if enabled.Valid {
		p.EmailEnabled = &enabled.Bool
	}
	p.Frequency = frequency.String
	return &p, nil
}
