package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new user. Duplicate emails map to ErrEmailTaken.
func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, name, email, password_hash, role, bar_council_id, mobile_number, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		nullString(user.BarCouncilID),
		nullString(user.MobileNumber),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "users_email_key") || strings.Contains(err.Error(), "duplicate key") {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// GetByID fetches a user by ID.
func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT id, name, email, password_hash, role, bar_council_id, mobile_number, created_at, updated_at
FROM users
WHERE id = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, userID))
}

// GetByEmail fetches a user by email.
func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const query = `
SELECT id, name, email, password_hash, role, bar_council_id, mobile_number, created_at, updated_at
FROM users
WHERE email = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, email))
}

// Link records a lawyer-client association. Re-linking is a no-op.
func (r *PGRepo) Link(ctx context.Context, lawyerID, clientID string) error {
	const query = `
INSERT INTO user_links (lawyer_id, client_id)
VALUES ($1, $2)
ON CONFLICT (lawyer_id, client_id) DO NOTHING`
	_, err := r.DB.ExecContext(ctx, query, lawyerID, clientID)
	return err
}

// ListLinked returns the counterpart users linked to the given user.
func (r *PGRepo) ListLinked(ctx context.Context, userID, role string) ([]User, error) {
	query := `
SELECT u.id, u.name, u.email, u.password_hash, u.role, u.bar_council_id, u.mobile_number, u.created_at, u.updated_at
FROM users u
JOIN user_links l ON u.id = l.client_id
WHERE l.lawyer_id = $1
ORDER BY u.name`
	if role == RoleClient {
		query = `
SELECT u.id, u.name, u.email, u.password_hash, u.role, u.bar_council_id, u.mobile_number, u.created_at, u.updated_at
FROM users u
JOIN user_links l ON u.id = l.lawyer_id
WHERE l.client_id = $1
ORDER BY u.name`
	}

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row *sql.Row) (User, error) {
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func scanUser(row rowScanner) (User, error) {
	var user User
	var barCouncilID sql.NullString
	var mobileNumber sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&barCouncilID,
		&mobileNumber,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	if barCouncilID.Valid {
		user.BarCouncilID = barCouncilID.String
	}
	if mobileNumber.Valid {
		user.MobileNumber = mobileNumber.String
	}
	return user, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
