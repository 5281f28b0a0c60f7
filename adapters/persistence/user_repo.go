package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/portfolio-api/internal/domain/user"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

type postgresUserRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresUserRepo(db *pgxpool.Pool, logger logger.Logger) user.Repository {
	return &postgresUserRepo{db: db, logger: logger}
}

const userColumns = `id, username, email, first_name, last_name, password_hash, created_at`

func scanUser(row pgx.Row, identifier string) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("user", identifier)
		}
		return nil, apperror.NewInternal("failed to query user", err)
	}
	return u, nil
}

func (r *postgresUserRepo) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, username, email, first_name, last_name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := conn(ctx, r.db).Exec(ctx, query, u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.CreatedAt)
	if err != nil {
		if pgCode(err) == pgUniqueViolation && isEmailConflict(err) {
			return apperror.NewConflict("user", "email", u.Email)
		}
		return mapWriteError(err, "user", "username", u.Username, "failed to create user")
	}
	return nil
}

func (r *postgresUserRepo) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users SET username = $2, email = $3, first_name = $4, last_name = $5
		WHERE id = $1
	`
	tag, err := conn(ctx, r.db).Exec(ctx, query, u.ID, u.Username, u.Email, u.FirstName, u.LastName)
	if err != nil {
		if pgCode(err) == pgUniqueViolation && isEmailConflict(err) {
			return apperror.NewConflict("user", "email", u.Email)
		}
		return mapWriteError(err, "user", "username", u.Username, "failed to update user")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("user", u.ID.String())
	}
	return nil
}

func (r *postgresUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	row := conn(ctx, r.db).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row, id.String())
}

func (r *postgresUserRepo) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	row := conn(ctx, r.db).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row, username)
}

func (r *postgresUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	row := conn(ctx, r.db).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
	return scanUser(row, email)
}

func isEmailConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.ConstraintName == "users_email_lower_idx"
}
