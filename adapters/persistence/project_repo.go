package persistence

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/portfolio-api/internal/domain/project"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

type postgresProjectRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresProjectRepo(db *pgxpool.Pool, logger logger.Logger) project.Repository {
	return &postgresProjectRepo{db: db, logger: logger}
}

var projectColumns = []string{
	"id", "owner_id", "name", "description", "link", "status", "completion", "technologies", "type",
	"image_url", "image_public_id", "image_thumbnail_url", "created_at", "updated_at",
}

func scanProject(row pgx.Row) (*project.Project, error) {
	p := &project.Project{}
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Description,
		&p.Link,
		&p.Status,
		&p.Completion,
		&p.Technologies,
		&p.Type,
		&p.ImageURL,
		&p.ImagePublicID,
		&p.ThumbnailURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("project", "")
		}
		return nil, apperror.NewInternal("failed to scan project row", err)
	}
	return p, nil
}

func scanProjects(rows pgx.Rows) ([]*project.Project, error) {
	defer rows.Close()
	projects := make([]*project.Project, 0)

	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating project rows", err)
	}
	return projects, nil
}

func (r *postgresProjectRepo) Save(ctx context.Context, p *project.Project) error {
	sql, args, err := psql.Insert("projects").
		Columns(projectColumns...).
		Values(
			p.ID, p.OwnerID, p.Name, p.Description, p.Link, p.Status, p.Completion, p.Technologies, p.Type,
			p.ImageURL, p.ImagePublicID, p.ThumbnailURL, p.CreatedAt, p.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build insert project query", err)
	}

	if _, err := conn(ctx, r.db).Exec(ctx, sql, args...); err != nil {
		return mapWriteError(err, "project", "id", p.ID.String(), "failed to save project")
	}
	return nil
}

func (r *postgresProjectRepo) Update(ctx context.Context, p *project.Project) error {
	sql, args, err := psql.Update("projects").
		SetMap(map[string]any{
			"name":                p.Name,
			"description":         p.Description,
			"link":                p.Link,
			"status":              p.Status,
			"completion":          p.Completion,
			"technologies":        p.Technologies,
			"type":                p.Type,
			"image_url":           p.ImageURL,
			"image_public_id":     p.ImagePublicID,
			"image_thumbnail_url": p.ThumbnailURL,
			"updated_at":          sq.Expr("NOW()"),
		}).
		Where(sq.Eq{"id": p.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build update project query", err)
	}

	if err := conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NewNotFound("project", p.ID.String())
		}
		return mapWriteError(err, "project", "id", p.ID.String(), "failed to update project")
	}
	return nil
}

func (r *postgresProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return apperror.NewInternal("failed to delete project", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("project", id.String())
	}
	return nil
}

func (r *postgresProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	sql, args, err := psql.Select(projectColumns...).From("projects").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build find project query", err)
	}

	p, err := scanProject(conn(ctx, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NewNotFound("project", id.String())
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresProjectRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*project.Project, error) {
	builder := psql.Select(projectColumns...).
		From("projects").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build find by owner query", err)
	}

	rows, err := conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query projects by owner", err)
	}

	return scanProjects(rows)
}
