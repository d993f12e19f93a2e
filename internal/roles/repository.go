package roles

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/almanar-edu/almanar/internal/platform/db"
	"github.com/almanar-edu/almanar/internal/shared"
)

// Store defines role-store persistence. It is always driven by a trusted
// server-side pool, so reads see every row regardless of the caller.
type Store interface {
	CountAssignments(ctx context.Context) (int64, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]Role, error)
	Assign(ctx context.Context, userID uuid.UUID, role Role) error
	AssignFirstSuperAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewStore constructs a PostgreSQL store.
func NewStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// bootstrapLockID serialises concurrent first-admin bootstraps. Any stable
// bigint works; this one spells "almanar" on a phone keypad.
const bootstrapLockID int64 = 2562627

// CountAssignments returns the exact number of role assignments.
func (s *PGStore) CountAssignments(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM user_roles`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ListForUser returns every role held by the user.
func (s *PGStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]Role, error) {
	rows, err := s.pool.Query(ctx, `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var held []Role
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		held = append(held, Role(raw))
	}
	return held, rows.Err()
}

// Assign inserts one role assignment. The (user_id, role) pair is unique;
// violations map to shared.ErrDuplicate.
func (s *PGStore) Assign(ctx context.Context, userID uuid.UUID, role Role) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, userID, string(role))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrDuplicate
		}
		return err
	}
	return nil
}

// AssignFirstSuperAdmin performs the first-writer-wins bootstrap insert:
// inside one transaction it takes an advisory lock, re-checks that the table
// is still empty and only then inserts the super_admin row. Returns false
// without mutating when any assignment already exists, so two concurrent
// first callers can never both win.
func (s *PGStore) AssignFirstSuperAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	won := false
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, bootstrapLockID); err != nil {
			return err
		}
		var count int64
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM user_roles`).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		if _, err := tx.Exec(ctx, `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, userID, string(RoleSuperAdmin)); err != nil {
			return err
		}
		won = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return won, nil
}

var _ Store = (*PGStore)(nil)
