package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurora-mobile/aurora-auth/internal/domain/entity"
	"github.com/aurora-mobile/aurora-auth/internal/domain/repository"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) Create(u *entity.User) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO profiles (id, email, full_name, subscription, subscription_expiry)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, u.ID, u.Email, u.FullName, string(u.Subscription), u.SubscriptionExpiry)

	return row.Scan(&u.CreatedAt)
}

func (r *ProfileRepository) GetByID(userID string) (*entity.User, error) {
	ctx := context.Background()
	u := &entity.User{}
	var sub string

	row := r.pool.QueryRow(ctx, `
		SELECT id, email, full_name, subscription, subscription_expiry, created_at
		FROM profiles
		WHERE id = $1
	`, userID)

	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &sub, &u.SubscriptionExpiry,
		&u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Subscription = entity.Tier(sub)

	return u, nil
}

// Update applies the non-nil patch fields and returns the updated row.
func (r *ProfileRepository) Update(userID string, patch repository.ProfilePatch) (*entity.User, error) {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	args = append(args, userID)

	if patch.FullName != nil {
		args = append(args, *patch.FullName)
		sets = append(sets, fmt.Sprintf("full_name = $%d", len(args)))
	}
	if patch.Tier != nil {
		args = append(args, string(*patch.Tier))
		sets = append(sets, fmt.Sprintf("subscription = $%d", len(args)))
	}
	if patch.ClearExpiry {
		sets = append(sets, "subscription_expiry = NULL")
	} else if patch.Expiry != nil {
		args = append(args, *patch.Expiry)
		sets = append(sets, fmt.Sprintf("subscription_expiry = $%d", len(args)))
	}
	if len(sets) == 0 {
		return r.GetByID(userID)
	}

	ctx := context.Background()
	u := &entity.User{}
	var sub string

	query := fmt.Sprintf(`
		UPDATE profiles
		SET %s
		WHERE id = $1
		RETURNING id, email, full_name, subscription, subscription_expiry, created_at
	`, strings.Join(sets, ", "))

	row := r.pool.QueryRow(ctx, query, args...)
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &sub, &u.SubscriptionExpiry,
		&u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Subscription = entity.Tier(sub)

	return u, nil
}
