package persistence

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/portfolio-api/internal/domain/skill"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type postgresSkillRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresSkillRepo(db *pgxpool.Pool, logger logger.Logger) skill.Repository {
	return &postgresSkillRepo{db: db, logger: logger}
}

func (r *postgresSkillRepo) UpsertCategory(ctx context.Context, name string) (*skill.Category, bool, error) {
	query := `
		INSERT INTO skill_categories (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, (xmax = 0)
	`
	c := &skill.Category{Skills: []skill.Skill{}}
	var created bool
	if err := conn(ctx, r.db).QueryRow(ctx, query, name).Scan(&c.ID, &c.Name, &created); err != nil {
		return nil, false, mapWriteError(err, "skill category", "name", name, "failed to upsert skill category")
	}
	return c, created, nil
}

func (r *postgresSkillRepo) FindCategoryByID(ctx context.Context, id uuid.UUID) (*skill.Category, error) {
	c := &skill.Category{}
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT id, name FROM skill_categories WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("skill category", id.String())
		}
		return nil, apperror.NewInternal("failed to query skill category", err)
	}

	skills, err := r.ListSkillsByCategories(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	c.Skills = make([]skill.Skill, 0, len(skills))
	for _, s := range skills {
		c.Skills = append(c.Skills, *s)
	}
	return c, nil
}

func (r *postgresSkillRepo) RenameCategory(ctx context.Context, id uuid.UUID, name string) error {
	sql, args, err := psql.Update("skill_categories").Set("name", name).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build rename category query", err)
	}
	tag, err := conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		return mapWriteError(err, "skill category", "name", name, "failed to rename skill category")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("skill category", id.String())
	}
	return nil
}

// ListCategoriesByIDs returns the categories in the order of ids, each with
// its skills. Unknown ids are skipped.
func (r *postgresSkillRepo) ListCategoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]*skill.Category, error) {
	if len(ids) == 0 {
		return []*skill.Category{}, nil
	}

	sql, args, err := psql.Select("id", "name").From("skill_categories").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list categories query", err)
	}
	rows, err := conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to list skill categories", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*skill.Category, len(ids))
	for rows.Next() {
		c := &skill.Category{Skills: []skill.Skill{}}
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, apperror.NewInternal("failed to scan skill category", err)
		}
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating skill categories", err)
	}

	skills, err := r.ListSkillsByCategories(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, s := range skills {
		if c, ok := byID[s.CategoryID]; ok {
			c.Skills = append(c.Skills, *s)
		}
	}

	return inOrder(ids, byID), nil
}

func (r *postgresSkillRepo) UpsertSkill(ctx context.Context, categoryID uuid.UUID, name string, level int) (*skill.Skill, bool, error) {
	query := `
		INSERT INTO skills (category_id, name, level) VALUES ($1, $2, $3)
		ON CONFLICT (category_id, name) DO UPDATE SET level = EXCLUDED.level
		RETURNING id, category_id, name, level, (xmax = 0)
	`
	s := &skill.Skill{}
	var created bool
	err := conn(ctx, r.db).QueryRow(ctx, query, categoryID, name, level).Scan(&s.ID, &s.CategoryID, &s.Name, &s.Level, &created)
	if err != nil {
		return nil, false, mapWriteError(err, "skill", "name", name, "failed to upsert skill")
	}
	return s, created, nil
}

func (r *postgresSkillRepo) FindSkillByID(ctx context.Context, id uuid.UUID) (*skill.Skill, error) {
	s := &skill.Skill{}
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT id, category_id, name, level FROM skills WHERE id = $1`, id).
		Scan(&s.ID, &s.CategoryID, &s.Name, &s.Level)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("skill", id.String())
		}
		return nil, apperror.NewInternal("failed to query skill", err)
	}
	return s, nil
}

func (r *postgresSkillRepo) UpdateSkill(ctx context.Context, s *skill.Skill) error {
	sql, args, err := psql.Update("skills").
		SetMap(map[string]any{"name": s.Name, "level": s.Level}).
		Where(sq.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build update skill query", err)
	}
	tag, err := conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		return mapWriteError(err, "skill", "name", s.Name, "failed to update skill")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("skill", s.ID.String())
	}
	return nil
}

func (r *postgresSkillRepo) DeleteSkill(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM skills WHERE id = $1`, id)
	if err != nil {
		return apperror.NewInternal("failed to delete skill", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("skill", id.String())
	}
	return nil
}

// ListSkillsByCategories returns skills grouped by category in the order of
// categoryIDs, sorted by name inside each category.
func (r *postgresSkillRepo) ListSkillsByCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]*skill.Skill, error) {
	if len(categoryIDs) == 0 {
		return []*skill.Skill{}, nil
	}

	sql, args, err := psql.Select("id", "category_id", "name", "level").
		From("skills").
		Where(sq.Eq{"category_id": categoryIDs}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list skills query", err)
	}
	rows, err := conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to list skills", err)
	}
	defer rows.Close()

	byCategory := make(map[uuid.UUID][]*skill.Skill, len(categoryIDs))
	for rows.Next() {
		s := &skill.Skill{}
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Level); err != nil {
			return nil, apperror.NewInternal("failed to scan skill", err)
		}
		byCategory[s.CategoryID] = append(byCategory[s.CategoryID], s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating skills", err)
	}

	out := make([]*skill.Skill, 0)
	for _, id := range categoryIDs {
		out = append(out, byCategory[id]...)
	}
	return out, nil
}
