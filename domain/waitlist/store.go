package waitlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/zerovacancy/zerovacancy/pkg/pgutils"
)

// ErrDuplicate is returned by Store.Insert when the email is already present.
var ErrDuplicate = errors.New("email already on the waitlist")

// Store persists signups.
type Store interface {
	// Insert adds s or returns ErrDuplicate, leaving the table unchanged.
	Insert(ctx context.Context, s *Signup) error
	Count(ctx context.Context) (int, error)
}

// BunStore is the Postgres Store.
type BunStore struct {
	db bun.IDB
}

// NewStore returns nil when there is no database.
func NewStore(db bun.IDB) Store {
	if db == nil {
		return nil
	}
	return &BunStore{db: db}
}

// Insert relies on the unique constraint rather than a prior lookup so that
// concurrent signups for the same address cannot both succeed.
func (s *BunStore) Insert(ctx context.Context, signup *Signup) error {
	_, err := s.db.NewInsert().
		Model(signup).
		Returning("created_at").
		Exec(ctx)
	if pgutils.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert waitlist signup: %w", err)
	}
	return nil
}

// Count returns the number of signups.
func (s *BunStore) Count(ctx context.Context) (int, error) {
	n, err := s.db.NewSelect().Model((*Signup)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count waitlist signups: %w", err)
	}
	return n, nil
}
