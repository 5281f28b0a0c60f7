package persistence

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/portfolio-api/internal/domain/certification"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

type postgresCertificationRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresCertificationRepo(db *pgxpool.Pool, logger logger.Logger) certification.Repository {
	return &postgresCertificationRepo{db: db, logger: logger}
}

var certificationColumns = []string{"id", "title", "issuer", "date", "badge", "type", "in_progress", "created_by"}

func scanCertification(row pgx.Row) (*certification.Certification, error) {
	c := &certification.Certification{}
	err := row.Scan(&c.ID, &c.Title, &c.Issuer, &c.Date, &c.Badge, &c.Type, &c.InProgress, &c.CreatedBy)
	return c, err
}

func (r *postgresCertificationRepo) Upsert(ctx context.Context, c *certification.Certification) (bool, error) {
	query := `
		INSERT INTO certifications (title, issuer, date, badge, type, in_progress, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (title, issuer) DO UPDATE SET
			date = EXCLUDED.date,
			badge = EXCLUDED.badge,
			type = EXCLUDED.type,
			in_progress = EXCLUDED.in_progress
		RETURNING id, created_by, (xmax = 0)
	`
	var created bool
	err := conn(ctx, r.db).QueryRow(ctx, query, c.Title, c.Issuer, c.Date, c.Badge, c.Type, c.InProgress, c.CreatedBy).
		Scan(&c.ID, &c.CreatedBy, &created)
	if err != nil {
		return false, mapWriteError(err, "certification", "title", c.Title, "failed to upsert certification")
	}
	return created, nil
}

func (r *postgresCertificationRepo) FindByID(ctx context.Context, id uuid.UUID) (*certification.Certification, error) {
	sql, args, err := psql.Select(certificationColumns...).From("certifications").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build find certification query", err)
	}

	c, err := scanCertification(conn(ctx, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("certification", id.String())
		}
		return nil, apperror.NewInternal("failed to query certification", err)
	}
	return c, nil
}

func (r *postgresCertificationRepo) Update(ctx context.Context, c *certification.Certification) error {
	sql, args, err := psql.Update("certifications").
		SetMap(map[string]any{
			"title":       c.Title,
			"issuer":      c.Issuer,
			"date":        c.Date,
			"badge":       c.Badge,
			"type":        c.Type,
			"in_progress": c.InProgress,
		}).
		Where(sq.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build update certification query", err)
	}

	tag, err := conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		return mapWriteError(err, "certification", "title", c.Title, "failed to update certification")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("certification", c.ID.String())
	}
	return nil
}

func (r *postgresCertificationRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*certification.Certification, error) {
	if len(ids) == 0 {
		return []*certification.Certification{}, nil
	}

	sql, args, err := psql.Select(certificationColumns...).From("certifications").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list certifications query", err)
	}
	rows, err := conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to list certifications", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*certification.Certification, len(ids))
	for rows.Next() {
		c, err := scanCertification(rows)
		if err != nil {
			return nil, apperror.NewInternal("failed to scan certification", err)
		}
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating certifications", err)
	}
	return inOrder(ids, byID), nil
}
