package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/domain"
)

type HoldRepository struct {
	pool *pgxpool.Pool
}

func NewHoldRepository(pool *pgxpool.Pool) *HoldRepository {
	return &HoldRepository{pool: pool}
}

func (r *HoldRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const holdColumns = `
id, external_id, offer_id, booking_reference, idempotency_key, state,
created_at, updated_at, hold_expires_at, payment_required_by,
currency, base_amount::text, tax_amount::text, total_amount::text,
passengers, slices, conditions,
payment_reference, confirmed_reference, paid_at, cancelled_at, expired_at, version`

func (r *HoldRepository) GetHold(ctx context.Context, id string) (domain.HoldOrder, error) {
	query := `SELECT ` + holdColumns + ` FROM hold_orders WHERE id = $1`
	h, err := scanHold(conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.HoldOrder{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.HoldOrder{}, domain.ErrHoldNotFound
		}
		return domain.HoldOrder{}, fmt.Errorf("get hold: %w", err)
	}
	return h, nil
}

func (r *HoldRepository) FindHoldByIdempotencyKey(ctx context.Context, key string) (*domain.HoldOrder, error) {
	query := `SELECT ` + holdColumns + ` FROM hold_orders WHERE idempotency_key = $1`
	h, err := scanHold(conn(ctx, r.pool).QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find hold by idempotency key: %w", err)
	}
	return &h, nil
}

func (r *HoldRepository) CreateHold(ctx context.Context, hold domain.HoldOrder) error {
	passengers, slices, conditions, err := marshalDocuments(hold)
	if err != nil {
		return err
	}

	const stmt = `
INSERT INTO hold_orders (
	id, external_id, offer_id, booking_reference, idempotency_key, state,
	created_at, updated_at, hold_expires_at, payment_required_by,
	currency, base_amount, tax_amount, total_amount,
	passengers, slices, conditions, version
) VALUES (
	$1, $2, $3, $4, $5, $6,
	$7, $8, $9, $10,
	$11, $12::numeric, $13::numeric, $14::numeric,
	$15::jsonb, $16::jsonb, $17::jsonb, $18
)`

	_, err = conn(ctx, r.pool).Exec(ctx, stmt,
		hold.ID,
		hold.ExternalID,
		hold.OfferID,
		hold.BookingReference,
		hold.IdempotencyKey,
		string(hold.State),
		hold.CreatedAt,
		hold.UpdatedAt,
		hold.HoldExpiresAt,
		hold.PaymentRequiredBy,
		hold.TotalAmount.Currency,
		hold.BaseAmount.Amount.String(),
		hold.TaxAmount.Amount.String(),
		hold.TotalAmount.Amount.String(),
		passengers,
		slices,
		conditions,
		hold.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrIdempotencyConflict
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isCheckViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrAmountMismatch, err)
		}
		return fmt.Errorf("create hold: %w", err)
	}
	return nil
}

// UpdateHold writes a terminal transition. hold.Version is the version the
// caller read; the row must still be active at that version.
func (r *HoldRepository) UpdateHold(ctx context.Context, hold domain.HoldOrder) error {
	const stmt = `
UPDATE hold_orders
SET state = $2,
	updated_at = $3,
	payment_reference = $4,
	confirmed_reference = $5,
	paid_at = $6,
	cancelled_at = $7,
	expired_at = $8,
	version = version + 1
WHERE id = $1 AND version = $9 AND state = 'active'`

	tag, err := conn(ctx, r.pool).Exec(ctx, stmt,
		hold.ID,
		string(hold.State),
		hold.UpdatedAt,
		hold.PaymentReference,
		hold.ConfirmedReference,
		hold.PaidAt,
		hold.CancelledAt,
		hold.ExpiredAt,
		hold.Version,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update hold: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM hold_orders WHERE id = $1)`, hold.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check hold: %w", err)
	}
	if !exists {
		return domain.ErrHoldNotFound
	}
	return domain.ErrConcurrentUpdate
}

func marshalDocuments(hold domain.HoldOrder) (passengers, slices, conditions string, err error) {
	p, err := json.Marshal(nonNil(hold.Passengers))
	if err != nil {
		return "", "", "", fmt.Errorf("marshal passengers: %w", err)
	}
	s, err := json.Marshal(nonNil(hold.Slices))
	if err != nil {
		return "", "", "", fmt.Errorf("marshal slices: %w", err)
	}
	c, err := json.Marshal(hold.Conditions)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal conditions: %w", err)
	}
	return string(p), string(s), string(c), nil
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

func scanHold(row pgx.Row) (domain.HoldOrder, error) {
	var (
		h                          domain.HoldOrder
		state, currency            string
		base, tax, total           string
		passengers, slices, conds  []byte
		paidAt, cancelledAt, expAt *time.Time
	)
	err := row.Scan(
		&h.ID, &h.ExternalID, &h.OfferID, &h.BookingReference, &h.IdempotencyKey, &state,
		&h.CreatedAt, &h.UpdatedAt, &h.HoldExpiresAt, &h.PaymentRequiredBy,
		&currency, &base, &tax, &total,
		&passengers, &slices, &conds,
		&h.PaymentReference, &h.ConfirmedReference, &paidAt, &cancelledAt, &expAt, &h.Version,
	)
	if err != nil {
		return domain.HoldOrder{}, err
	}
	h.State = domain.HoldState(state)
	h.PaidAt, h.CancelledAt, h.ExpiredAt = paidAt, cancelledAt, expAt

	if h.BaseAmount, err = parseMoney(base, currency); err != nil {
		return domain.HoldOrder{}, err
	}
	if h.TaxAmount, err = parseMoney(tax, currency); err != nil {
		return domain.HoldOrder{}, err
	}
	if h.TotalAmount, err = parseMoney(total, currency); err != nil {
		return domain.HoldOrder{}, err
	}
	if err := json.Unmarshal(passengers, &h.Passengers); err != nil {
		return domain.HoldOrder{}, fmt.Errorf("decode passengers: %w", err)
	}
	if err := json.Unmarshal(slices, &h.Slices); err != nil {
		return domain.HoldOrder{}, fmt.Errorf("decode slices: %w", err)
	}
	if err := json.Unmarshal(conds, &h.Conditions); err != nil {
		return domain.HoldOrder{}, fmt.Errorf("decode conditions: %w", err)
	}
	return h, nil
}

func parseMoney(amount, currency string) (domain.Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return domain.Money{}, fmt.Errorf("decode amount %q: %w", amount, err)
	}
	return domain.Money{Amount: d, Currency: currency}, nil
}
