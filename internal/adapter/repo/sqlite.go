package repo

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/example/planshop/internal/slot"
)

// SQLiteSlotStore is the single-device backend: one local file holding
// every slot, the closest analog of the browser-scoped storage the
// storefront grew up on.
type SQLiteSlotStore struct {
	DB *sql.DB
}

// OpenSQLite opens (creating if needed) the slot database at path.
func OpenSQLite(path string) (*SQLiteSlotStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite db")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping sqlite db")
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS slots (
  name TEXT PRIMARY KEY,
  payload BLOB NOT NULL,
  version INTEGER NOT NULL
);`); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ensure schema")
	}
	return &SQLiteSlotStore{DB: db}, nil
}

func (s *SQLiteSlotStore) Close() error {
	return s.DB.Close()
}

func (s *SQLiteSlotStore) Get(ctx context.Context, name string) ([]byte, int64, error) {
	var payload []byte
	var version int64
	err := s.DB.QueryRowContext(ctx, `SELECT payload, version FROM slots WHERE name = ?`, name).Scan(&payload, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, errors.Wrap(err, "get slot")
	}
	return payload, version, nil
}

func (s *SQLiteSlotStore) Put(ctx context.Context, name string, payload []byte, version int64) error {
	switch version {
	case slot.AnyVersion:
		_, err := s.DB.ExecContext(ctx, `INSERT INTO slots(name, payload, version) VALUES(?, ?, 1)
        ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, version = slots.version + 1`, name, payload)
		return errors.Wrap(err, "put slot")
	case 0:
		res, err := s.DB.ExecContext(ctx, `INSERT INTO slots(name, payload, version) VALUES(?, ?, 1)
        ON CONFLICT(name) DO NOTHING`, name, payload)
		if err != nil {
			return errors.Wrap(err, "insert slot")
		}
		return conflictUnlessAffected(res)
	default:
		res, err := s.DB.ExecContext(ctx, `UPDATE slots SET payload = ?, version = version + 1
        WHERE name = ? AND version = ?`, payload, name, version)
		if err != nil {
			return errors.Wrap(err, "update slot")
		}
		return conflictUnlessAffected(res)
	}
}

func conflictUnlessAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return slot.ErrConflict
	}
	return nil
}

var _ slot.Store = (*SQLiteSlotStore)(nil)
