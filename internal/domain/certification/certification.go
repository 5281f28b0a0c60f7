package certification

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type Type string

const (
	TypeAWS   Type = "aws"
	TypeALX   Type = "alx"
	TypeOther Type = "other"
)

var ErrInvalidType = errors.New("certification type must be one of aws, alx, other")

type Certification struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Issuer     string     `json:"issuer"`
	Date       string     `json:"date"`
	Badge      string     `json:"badge"`
	Type       Type       `json:"type"`
	InProgress bool       `json:"in_progress"`
	CreatedBy  *uuid.UUID `json:"created_by,omitempty"`
}

func (c *Certification) Validate() error {
	switch c.Type {
	case TypeAWS, TypeALX, TypeOther:
		return nil
	case "":
		c.Type = TypeOther
		return nil
	default:
		return ErrInvalidType
	}
}

type Repository interface {
	// Upsert matches on (title, issuer). An existing row gets date, badge,
	// type and in_progress overwritten; CreatedBy is only set on insert.
	Upsert(ctx context.Context, c *Certification) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Certification, error)
	Update(ctx context.Context, c *Certification) error
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*Certification, error)
}
