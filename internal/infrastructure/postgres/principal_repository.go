package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurora-mobile/aurora-auth/internal/domain/entity"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

type PrincipalRepository struct {
	pool *pgxpool.Pool
}

func NewPrincipalRepository(pool *pgxpool.Pool) *PrincipalRepository {
	return &PrincipalRepository{pool: pool}
}

func (r *PrincipalRepository) Create(p *entity.Principal) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO auth_users (email, password_hash, full_name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, p.Email, p.PasswordHash, p.FullName)

	return row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PrincipalRepository) GetByID(id string) (*entity.Principal, error) {
	ctx := context.Background()
	p := &entity.Principal{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, full_name, verified, created_at, updated_at
		FROM auth_users
		WHERE id = $1
	`, id)

	if err := row.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.FullName, &p.Verified,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

func (r *PrincipalRepository) GetByEmail(email string) (*entity.Principal, error) {
	ctx := context.Background()
	p := &entity.Principal{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, full_name, verified, created_at, updated_at
		FROM auth_users
		WHERE email = $1
	`, email)

	if err := row.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.FullName, &p.Verified,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

func (r *PrincipalRepository) SetVerified(id string) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE auth_users
		SET verified = TRUE, updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
