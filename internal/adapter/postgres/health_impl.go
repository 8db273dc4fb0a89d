package postgres

import (
	"context"
	"database/sql"
)

// HealthRepoImpl reports store reachability.
type HealthRepoImpl struct {
	db *sql.DB
}

func NewHealthRepo(db *sql.DB) *HealthRepoImpl {
	return &HealthRepoImpl{db: db}
}

// Ping verifies a connection can be made.
func (r *HealthRepoImpl) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
