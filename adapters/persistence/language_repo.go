package persistence

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/portfolio-api/internal/domain/language"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

type postgresLanguageRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresLanguageRepo(db *pgxpool.Pool, logger logger.Logger) language.Repository {
	return &postgresLanguageRepo{db: db, logger: logger}
}

func (r *postgresLanguageRepo) Upsert(ctx context.Context, l *language.Language) (bool, error) {
	query := `
		INSERT INTO languages (name, proficiency) VALUES ($1, $2)
		ON CONFLICT (name, proficiency) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, (xmax = 0)
	`
	var created bool
	if err := conn(ctx, r.db).QueryRow(ctx, query, l.Name, l.Proficiency).Scan(&l.ID, &created); err != nil {
		return false, mapWriteError(err, "language", "name", l.Name, "failed to upsert language")
	}
	return created, nil
}

func (r *postgresLanguageRepo) FindByID(ctx context.Context, id uuid.UUID) (*language.Language, error) {
	l := &language.Language{}
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT id, name, proficiency FROM languages WHERE id = $1`, id).
		Scan(&l.ID, &l.Name, &l.Proficiency)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("language", id.String())
		}
		return nil, apperror.NewInternal("failed to query language", err)
	}
	return l, nil
}

func (r *postgresLanguageRepo) Update(ctx context.Context, l *language.Language) error {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE languages SET name = $2, proficiency = $3 WHERE id = $1`,
		l.ID, l.Name, l.Proficiency,
	)
	if err != nil {
		return mapWriteError(err, "language", "name", l.Name, "failed to update language")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("language", l.ID.String())
	}
	return nil
}

func (r *postgresLanguageRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*language.Language, error) {
	if len(ids) == 0 {
		return []*language.Language{}, nil
	}

	sql, args, err := psql.Select("id", "name", "proficiency").From("languages").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list languages query", err)
	}
	rows, err := conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to list languages", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*language.Language, len(ids))
	for rows.Next() {
		l := &language.Language{}
		if err := rows.Scan(&l.ID, &l.Name, &l.Proficiency); err != nil {
			return nil, apperror.NewInternal("failed to scan language", err)
		}
		byID[l.ID] = l
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating languages", err)
	}
	return inOrder(ids, byID), nil
}
