// README: Account store backed by PostgreSQL.
package account

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"breeze/internal/types"
)

// Store is the persistence boundary for accounts and the allow-list.
type Store interface {
	GetByID(ctx context.Context, id types.ID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Create(ctx context.Context, a *Account) error
	Update(ctx context.Context, a *Account) error
	ListAll(ctx context.Context) ([]Account, error)
	ListByRole(ctx context.Context, role Role) ([]Account, error)

	GetApprovedEmail(ctx context.Context, email string) (*ApprovedEmail, error)
	InsertApprovedEmail(ctx context.Context, e *ApprovedEmail) error
	ListApprovedEmails(ctx context.Context) ([]ApprovedEmail, error)
	DeleteApprovedEmail(ctx context.Context, id types.ID) (bool, error)
}

type pgStore struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) Store {
	return &pgStore{db: db}
}

const accountColumns = `
	id, name, email, google_id, role, is_approved,
	street, city, state, zip_code, country, phone,
	created_at, updated_at`

func (s *pgStore) GetByID(ctx context.Context, id types.ID) (*Account, error) {
	row := s.db.QueryRow(ctx, `SELECT`+accountColumns+` FROM accounts WHERE id = $1`, string(id))
	return scanAccount(row)
}

func (s *pgStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	row := s.db.QueryRow(ctx, `SELECT`+accountColumns+` FROM accounts WHERE email = $1`, email)
	return scanAccount(row)
}

func (s *pgStore) Create(ctx context.Context, a *Account) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO accounts (
			id, name, email, google_id, role, is_approved,
			street, city, state, zip_code, country, phone,
			created_at, updated_at
		) VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		string(a.ID), a.Name, a.Email, a.GoogleID, string(a.Role), a.Approved,
		a.Address.Street, a.Address.City, a.Address.State, a.Address.ZipCode, a.Address.Country, a.Phone,
		a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (s *pgStore) Update(ctx context.Context, a *Account) error {
	_, err := s.db.Exec(ctx, `
		UPDATE accounts
		SET name = $2, email = $3, google_id = NULLIF($4, ''), role = $5, is_approved = $6,
		    street = $7, city = $8, state = $9, zip_code = $10, country = $11, phone = $12,
		    updated_at = NOW()
		WHERE id = $1`,
		string(a.ID), a.Name, a.Email, a.GoogleID, string(a.Role), a.Approved,
		a.Address.Street, a.Address.City, a.Address.State, a.Address.ZipCode, a.Address.Country, a.Phone,
	)
	return err
}

func (s *pgStore) ListAll(ctx context.Context) ([]Account, error) {
	rows, err := s.db.Query(ctx, `SELECT`+accountColumns+` FROM accounts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func (s *pgStore) ListByRole(ctx context.Context, role Role) ([]Account, error) {
	rows, err := s.db.Query(ctx,
		`SELECT`+accountColumns+` FROM accounts WHERE role = $1 ORDER BY created_at DESC`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func (s *pgStore) GetApprovedEmail(ctx context.Context, email string) (*ApprovedEmail, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, email, role, created_at FROM approved_emails WHERE email = $1`, email)
	var e ApprovedEmail
	err := row.Scan(&e.ID, &e.Email, &e.Role, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *pgStore) InsertApprovedEmail(ctx context.Context, e *ApprovedEmail) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO approved_emails (id, email, role, created_at) VALUES ($1, $2, $3, $4)`,
		string(e.ID), e.Email, string(e.Role), e.CreatedAt)
	return err
}

func (s *pgStore) ListApprovedEmails(ctx context.Context) ([]ApprovedEmail, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, email, role, created_at FROM approved_emails ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ApprovedEmail
	for rows.Next() {
		var e ApprovedEmail
		if err := rows.Scan(&e.ID, &e.Email, &e.Role, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *pgStore) DeleteApprovedEmail(ctx context.Context, id types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM approved_emails WHERE id = $1`, string(id))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	var googleID *string
	err := row.Scan(
		&a.ID, &a.Name, &a.Email, &googleID, &a.Role, &a.Approved,
		&a.Address.Street, &a.Address.City, &a.Address.State, &a.Address.ZipCode, &a.Address.Country, &a.Phone,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if googleID != nil {
		a.GoogleID = *googleID
	}
	return &a, nil
}

func collectAccounts(rows pgx.Rows) ([]Account, error) {
	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
