package service

import (
	"context"

	"github.com/google/uuid"
)

type EventType string

const (
	EventProfileImageUploaded EventType = "profile.image_uploaded"
	EventProjectImageUploaded EventType = "project.image_uploaded"
	EventCollectionSynced     EventType = "collection.synced"
)

type PortfolioEvent struct {
	EventType  EventType `json:"event_type"`
	AccountID  uuid.UUID `json:"account_id"`
	ResourceID uuid.UUID `json:"resource_id,omitempty"`
	PublicID   string    `json:"public_id,omitempty"`
	Collection string    `json:"collection,omitempty"`
	Created    int       `json:"created,omitempty"`
	Reused     int       `json:"reused,omitempty"`
}

type EventPublisher interface {
	PublishPortfolioEvent(ctx context.Context, evt PortfolioEvent) error
}
