package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/BogdanProkudin/Liftly-back/internal/models"
)

const userColumns = `id, email, name, username, avatar_url, bio, is_public, created_at, updated_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.db.QueryRow(ctx, query, userID))
}

type UpdateUserProfileInput struct {
	Name      *string
	Username  *string
	Bio       *string
	AvatarURL *string
}

func (r *UserRepository) UpdatePartial(ctx context.Context, userID string, input UpdateUserProfileInput) (*models.User, error) {
	query := `
		UPDATE users
		SET name = COALESCE($1, name),
			username = COALESCE($2, username),
			bio = COALESCE($3, bio),
			avatar_url = COALESCE($4, avatar_url),
			updated_at = NOW()
		WHERE id = $5
		RETURNING ` + userColumns + `
	`
	return r.scanUser(r.db.QueryRow(ctx, query,
		input.Name,
		input.Username,
		input.Bio,
		input.AvatarURL,
		userID,
	))
}

// Delete removes the account. Workouts and their sets go with it through
// the foreign-key cascade.
func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Username,
		&user.AvatarURL,
		&user.Bio,
		&user.IsPublic,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
