package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/example/planshop/internal/slot"
)

// PostgresSlotStore keeps every slot as one row with a version stamp
// bumped on write, for deployments where several processes share one
// store.
type PostgresSlotStore struct {
	Pool *pgxpool.Pool
}

func NewPostgresSlotStore(pool *pgxpool.Pool) *PostgresSlotStore {
	return &PostgresSlotStore{Pool: pool}
}

func (r *PostgresSlotStore) Get(ctx context.Context, name string) ([]byte, int64, error) {
	var payload []byte
	var version int64
	err := r.Pool.QueryRow(ctx, `SELECT payload, version FROM slots WHERE name = $1`, name).Scan(&payload, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, errors.Wrap(err, "get slot")
	}
	return payload, version, nil
}

func (r *PostgresSlotStore) Put(ctx context.Context, name string, payload []byte, version int64) error {
	switch version {
	case slot.AnyVersion:
		_, err := r.Pool.Exec(ctx, `INSERT INTO slots(name, payload, version) VALUES($1, $2, 1)
        ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, version = slots.version + 1`, name, payload)
		return errors.Wrap(err, "put slot")
	case 0:
		ct, err := r.Pool.Exec(ctx, `INSERT INTO slots(name, payload, version) VALUES($1, $2, 1)
        ON CONFLICT (name) DO NOTHING`, name, payload)
		if err != nil {
			return errors.Wrap(err, "insert slot")
		}
		if ct.RowsAffected() == 0 {
			return slot.ErrConflict
		}
		return nil
	default:
		ct, err := r.Pool.Exec(ctx, `UPDATE slots SET payload = $2, version = version + 1
        WHERE name = $1 AND version = $3`, name, payload, version)
		if err != nil {
			return errors.Wrap(err, "update slot")
		}
		if ct.RowsAffected() == 0 {
			return slot.ErrConflict
		}
		return nil
	}
}

var _ slot.Store = (*PostgresSlotStore)(nil)

// EnsureSchema creates the slots table if absent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS slots (
  name text PRIMARY KEY,
  payload jsonb NOT NULL,
  version bigint NOT NULL
);`)
	return errors.Wrap(err, "ensure schema")
}
