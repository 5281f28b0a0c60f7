package language

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

type Proficiency string

const (
	Native       Proficiency = "native"
	Fluent       Proficiency = "fluent"
	Proficient   Proficiency = "proficient"
	Intermediate Proficiency = "intermediate"
	Basic        Proficiency = "basic"
)

var ErrInvalidProficiency = errors.New("proficiency must be one of native, fluent, proficient, intermediate, basic")

// ParseProficiency accepts any casing ("Native", "NATIVE").
func ParseProficiency(s string) (Proficiency, error) {
	p := Proficiency(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case Native, Fluent, Proficient, Intermediate, Basic:
		return p, nil
	}
	return "", ErrInvalidProficiency
}

type Language struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Proficiency Proficiency `json:"proficiency"`
}

type Repository interface {
	// Upsert matches on (name, proficiency); the whole key is the row, so an
	// existing match is returned untouched.
	Upsert(ctx context.Context, l *Language) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Language, error)
	Update(ctx context.Context, l *Language) error
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*Language, error)
}
