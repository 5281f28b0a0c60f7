package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/portfolio-api/internal/domain/profile"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

type postgresProfileRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresProfileRepo(db *pgxpool.Pool, logger logger.Logger) profile.Repository {
	return &postgresProfileRepo{db: db, logger: logger}
}

const profileColumns = `id, account_id, bio, title, location, phone, website, github, linkedin, twitter,
	image_url, image_public_id, image_thumbnail_url, updated_at`

func scanProfile(row pgx.Row, accountID uuid.UUID) (*profile.Profile, error) {
	p, err := readProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("profile", accountID.String())
		}
		return nil, apperror.NewInternal("failed to query profile", err)
	}
	return p, nil
}

func readProfile(row pgx.Row) (*profile.Profile, error) {
	p := &profile.Profile{}
	err := row.Scan(
		&p.ID,
		&p.AccountID,
		&p.Bio,
		&p.Title,
		&p.Location,
		&p.Phone,
		&p.Website,
		&p.Github,
		&p.Linkedin,
		&p.Twitter,
		&p.ImageURL,
		&p.ImagePublicID,
		&p.ImageThumbnailURL,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresProfileRepo) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*profile.Profile, error) {
	row := conn(ctx, r.db).QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE account_id = $1`, accountID)
	return scanProfile(row, accountID)
}

// GetOrCreate relies on the unique account_id; the no-op update makes
// RETURNING yield the existing row on conflict.
func (r *postgresProfileRepo) GetOrCreate(ctx context.Context, accountID uuid.UUID) (*profile.Profile, error) {
	query := `
		INSERT INTO profiles (account_id) VALUES ($1)
		ON CONFLICT (account_id) DO UPDATE SET account_id = EXCLUDED.account_id
		RETURNING ` + profileColumns
	p, err := readProfile(conn(ctx, r.db).QueryRow(ctx, query, accountID))
	if err != nil {
		return nil, mapWriteError(err, "profile", "account_id", accountID.String(), "failed to create profile")
	}
	return p, nil
}

func (r *postgresProfileRepo) Update(ctx context.Context, p *profile.Profile) error {
	query := `
		UPDATE profiles SET
			bio = $2, title = $3, location = $4, phone = $5, website = $6, github = $7,
			linkedin = $8, twitter = $9, image_url = $10, image_public_id = $11,
			image_thumbnail_url = $12, updated_at = NOW()
		WHERE account_id = $1
	`
	tag, err := conn(ctx, r.db).Exec(ctx, query,
		p.AccountID, p.Bio, p.Title, p.Location, p.Phone, p.Website, p.Github,
		p.Linkedin, p.Twitter, p.ImageURL, p.ImagePublicID, p.ImageThumbnailURL,
	)
	if err != nil {
		return apperror.NewInternal("failed to update profile", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("profile", p.AccountID.String())
	}
	return nil
}

// Delete removes the profile; its link rows go with it by cascade.
func (r *postgresProfileRepo) Delete(ctx context.Context, accountID uuid.UUID) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM profiles WHERE account_id = $1`, accountID)
	if err != nil {
		return apperror.NewInternal("failed to delete profile", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("profile", accountID.String())
	}
	return nil
}
