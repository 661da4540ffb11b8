package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

// ErrDuplicateEmail is returned by UserStore.Create when the email is
// already taken. The database unique constraint is the authoritative guard,
// so this fires even when two concurrent registrations both passed the
// existence pre-check.
var ErrDuplicateEmail = errors.New("email already exists")

// UserStore is the persistence boundary for user accounts. Lookup methods
// return (nil, nil) when no row exists so that "absent" stays distinct from
// "query failed".
type UserStore interface {
	Create(ctx context.Context, email, hashedPassword string) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	ByID(ctx context.Context, id int64) (*User, error)
}

// PgxUserStore implements UserStore against a pgx connection pool.
type PgxUserStore struct {
	db *pgxpool.Pool
}

// NewPgxUserStore creates a UserStore backed by the given pool.
func NewPgxUserStore(db *pgxpool.Pool) *PgxUserStore {
	return &PgxUserStore{db: db}
}

// Create inserts a new user row. Creation is a single statement, so the row
// either exists fully or not at all.
func (s *PgxUserStore) Create(ctx context.Context, email, hashedPassword string) (*User, error) {
	user := &User{
		Email:          email,
		HashedPassword: hashedPassword,
	}
	query := `INSERT INTO users (email, hashed_password)
	          VALUES ($1, $2)
	          RETURNING id, created_at, is_active`
	err := s.db.QueryRow(ctx, query, email, hashedPassword).Scan(&user.ID, &user.CreatedAt, &user.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && strings.Contains(pgErr.ConstraintName, "email") {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

// ByEmail fetches a user by email, or (nil, nil) when none exists.
func (s *PgxUserStore) ByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanOne(ctx,
		`SELECT id, email, hashed_password, created_at, is_active FROM users WHERE email = $1`,
		email,
	)
}

// ByID fetches a user by id, or (nil, nil) when none exists.
func (s *PgxUserStore) ByID(ctx context.Context, id int64) (*User, error) {
	return s.scanOne(ctx,
		`SELECT id, email, hashed_password, created_at, is_active FROM users WHERE id = $1`,
		id,
	)
}

func (s *PgxUserStore) scanOne(ctx context.Context, query string, arg interface{}) (*User, error) {
	var user User
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
