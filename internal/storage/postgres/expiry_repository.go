package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ExpiryRepository struct {
	pool *pgxpool.Pool
}

func NewExpiryRepository(pool *pgxpool.Pool) *ExpiryRepository {
	return &ExpiryRepository{pool: pool}
}

func (r *ExpiryRepository) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	const stmt = `
UPDATE hold_orders
SET state = 'expired',
	expired_at = $1,
	updated_at = $1,
	version = version + 1
WHERE state = 'active' AND payment_required_by < $1`

	tag, err := conn(ctx, r.pool).Exec(ctx, stmt, now)
	if err != nil {
		return 0, fmt.Errorf("expire due holds: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
