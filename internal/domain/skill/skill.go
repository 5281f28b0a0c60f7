package skill

import (
	"context"

	"github.com/google/uuid"
)

type Category struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Skills []Skill   `json:"skills"`
}

type Skill struct {
	ID         uuid.UUID `json:"id"`
	CategoryID uuid.UUID `json:"category"`
	Name       string    `json:"name"`
	Level      int       `json:"level"`
}

type Repository interface {
	// UpsertCategory finds a category by name or creates it.
	UpsertCategory(ctx context.Context, name string) (*Category, bool, error)
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*Category, error)
	RenameCategory(ctx context.Context, id uuid.UUID, name string) error
	ListCategoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]*Category, error)

	// UpsertSkill finds a skill by (category, name), setting its level, or creates it.
	UpsertSkill(ctx context.Context, categoryID uuid.UUID, name string, level int) (*Skill, bool, error)
	FindSkillByID(ctx context.Context, id uuid.UUID) (*Skill, error)
	UpdateSkill(ctx context.Context, s *Skill) error
	DeleteSkill(ctx context.Context, id uuid.UUID) error
	ListSkillsByCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]*Skill, error)
}
