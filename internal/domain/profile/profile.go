package profile

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID                uuid.UUID `json:"id"`
	AccountID         uuid.UUID `json:"account_id"`
	Bio               string    `json:"bio"`
	Title             string    `json:"title"`
	Location          string    `json:"location"`
	Phone             string    `json:"phone"`
	Website           string    `json:"website"`
	Github            string    `json:"github"`
	Linkedin          string    `json:"linkedin"`
	Twitter           string    `json:"twitter"`
	ImageURL          *string   `json:"image_url"`
	ImagePublicID     *string   `json:"image_public_id"`
	ImageThumbnailURL *string   `json:"image_thumbnail_url"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// SetImage records a freshly uploaded image; the thumbnail is derived later.
func (p *Profile) SetImage(url, publicID string) {
	p.ImageURL = &url
	p.ImagePublicID = &publicID
	p.ImageThumbnailURL = nil
}

type Repository interface {
	FindByAccountID(ctx context.Context, accountID uuid.UUID) (*Profile, error)
	// GetOrCreate returns the account's profile, inserting an empty one if missing.
	GetOrCreate(ctx context.Context, accountID uuid.UUID) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
	Delete(ctx context.Context, accountID uuid.UUID) error
}

// Collection names one of the profile's many-to-many link sets.
type Collection string

const (
	CollectionSkillCategories Collection = "skill_categories"
	CollectionCertifications  Collection = "certifications"
	CollectionLanguages       Collection = "languages"
)

// LinkRepository manages the join rows between a profile and shared items.
// Linked ids are returned in position order.
type LinkRepository interface {
	Link(ctx context.Context, profileID uuid.UUID, c Collection, itemID uuid.UUID) error
	Unlink(ctx context.Context, profileID uuid.UUID, c Collection, itemID uuid.UUID) (bool, error)
	ReplaceAll(ctx context.Context, profileID uuid.UUID, c Collection, itemIDs []uuid.UUID) error
	Contains(ctx context.Context, profileID uuid.UUID, c Collection, itemID uuid.UUID) (bool, error)
	ListIDs(ctx context.Context, profileID uuid.UUID, c Collection) ([]uuid.UUID, error)
	// AccountsLinking lists the distinct accounts whose profiles link any of itemIDs.
	AccountsLinking(ctx context.Context, c Collection, itemIDs []uuid.UUID) ([]uuid.UUID, error)
}
