package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/user/speedsale-scraper/internal/entity"
	"github.com/user/speedsale-scraper/internal/repository"
)

const priceColumns = `id, shoe_id, retailer_id, price, original_price, discount_percentage, in_stock, product_url, date`

// PriceRepoImpl provides a concrete implementation for the PriceRepository interface using PostgreSQL.
type PriceRepoImpl struct {
	db *sql.DB
}

// NewPriceRepo creates a new instance of PriceRepoImpl.
func NewPriceRepo(db *sql.DB) *PriceRepoImpl {
	return &PriceRepoImpl{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObservation(row rowScanner) (*entity.PriceObservation, error) {
	var (
		o                     entity.PriceObservation
		price, original, disc sql.NullFloat64
		productURL            sql.NullString
	)
	if err := row.Scan(&o.ID, &o.ShoeID, &o.RetailerID, &price, &original, &disc, &o.InStock, &productURL, &o.ObservedAt); err != nil {
		return nil, err
	}
	o.Price = floatPtr(price)
	o.OriginalPrice = floatPtr(original)
	o.DiscountPercentage = floatPtr(disc)
	o.ProductURL = productURL.String
	return &o, nil
}

// FindForDay returns the retailer's observations for the shoes on the UTC day of day.
func (r *PriceRepoImpl) FindForDay(ctx context.Context, retailerID string, shoeIDs []string, day time.Time) (map[string]*entity.PriceObservation, error) {
	out := make(map[string]*entity.PriceObservation, len(shoeIDs))
	if len(shoeIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT ` + priceColumns + `
		FROM prices
		WHERE retailer_id = $1 AND shoe_id = ANY($2::uuid[]) AND observed_on = $3;
	`
	rows, err := r.db.QueryContext(ctx, query, retailerID, pq.Array(shoeIDs), entity.ObservationDay(day))
	if err != nil {
		return nil, fmt.Errorf("find prices for day: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		out[o.ShoeID] = o
	}
	return out, rows.Err()
}

// Create inserts the day's observation. When a row for the same shoe,
// retailer and day exists it is replaced only by a strictly cheaper price.
func (r *PriceRepoImpl) Create(ctx context.Context, obs *entity.PriceObservation) error {
	query := `
		INSERT INTO prices (shoe_id, retailer_id, price, original_price, discount_percentage, in_stock, product_url, date, observed_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (shoe_id, retailer_id, observed_on) DO UPDATE SET
			price = EXCLUDED.price,
			original_price = EXCLUDED.original_price,
			discount_percentage = EXCLUDED.discount_percentage,
			in_stock = EXCLUDED.in_stock,
			product_url = EXCLUDED.product_url,
			date = EXCLUDED.date
		WHERE prices.price IS NULL OR EXCLUDED.price < prices.price;
	`
	_, err := r.db.ExecContext(ctx, query,
		obs.ShoeID,
		obs.RetailerID,
		obs.Price,
		obs.OriginalPrice,
		obs.DiscountPercentage,
		obs.InStock,
		nullIfEmpty(obs.ProductURL),
		obs.ObservedAt,
		entity.ObservationDay(obs.ObservedAt),
	)
	if err != nil {
		return fmt.Errorf("insert price for shoe %s: %w", obs.ShoeID, mapError(err))
	}
	return nil
}

// UpdateIfCheaper overwrites observation id when obs is strictly cheaper.
func (r *PriceRepoImpl) UpdateIfCheaper(ctx context.Context, id string, obs *entity.PriceObservation) (bool, error) {
	query := `
		UPDATE prices SET
			price = $2,
			original_price = $3,
			discount_percentage = $4,
			in_stock = $5,
			product_url = $6,
			date = $7
		WHERE id = $1 AND (price IS NULL OR price > $2);
	`
	res, err := r.db.ExecContext(ctx, query,
		id,
		obs.Price,
		obs.OriginalPrice,
		obs.DiscountPercentage,
		obs.InStock,
		nullIfEmpty(obs.ProductURL),
		obs.ObservedAt,
	)
	if err != nil {
		return false, fmt.Errorf("update price %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// LatestForShoe returns the most recent observation of the shoe at any retailer.
func (r *PriceRepoImpl) LatestForShoe(ctx context.Context, shoeID string) (*entity.PriceObservation, error) {
	query := `
		SELECT ` + priceColumns + `
		FROM prices
		WHERE shoe_id = $1
		ORDER BY date DESC
		LIMIT 1;
	`
	o, err := scanObservation(r.db.QueryRowContext(ctx, query, shoeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrObservationNotFound
		}
		return nil, fmt.Errorf("latest price for shoe %s: %w", shoeID, err)
	}
	return o, nil
}

// Count returns the number of ledger rows.
func (r *PriceRepoImpl) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM prices;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count prices: %w", err)
	}
	return n, nil
}
