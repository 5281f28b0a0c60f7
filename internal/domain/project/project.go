package project

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Link          *string   `json:"link"`
	Status        string    `json:"status"`
	Completion    string    `json:"completion"`
	Technologies  string    `json:"technologies"`
	Type          string    `json:"type"`
	ImageURL      *string   `json:"image_url"`
	ImagePublicID *string   `json:"image_public_id"`
	ThumbnailURL  *string   `json:"image_thumbnail_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SetImage records a freshly uploaded image; the thumbnail is derived later.
func (p *Project) SetImage(url, publicID string) {
	p.ImageURL = &url
	p.ImagePublicID = &publicID
	p.ThumbnailURL = nil
}

var ErrNameRequired = errors.New("project name is required")

func (p *Project) Validate() error {
	if p.Name == "" {
		return ErrNameRequired
	}
	return nil
}

type Repository interface {
	Save(ctx context.Context, project *Project) error
	Update(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Project, error)
}
