package media

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/khoahotran/portfolio-api/internal/application/service"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
	"go.uber.org/zap"
)

const MaxImageSize = 5 * 1024 * 1024

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type ImageFile struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}

func ValidateImage(f ImageFile) error {
	if !allowedImageTypes[f.ContentType] {
		return apperror.NewAppError(apperror.ErrInvalidInput, "Invalid file type. Only images are allowed.", "accepted types: jpeg, png, gif, webp", nil)
	}
	if f.Size > MaxImageSize {
		return apperror.NewAppError(apperror.ErrInvalidInput, "File too large. Maximum size is 5MB.", fmt.Sprintf("got %d bytes", f.Size), nil)
	}
	return nil
}

// ImageStore uploads validated images and announces them so the worker can
// derive thumbnails.
type ImageStore struct {
	uploader  service.Uploader
	publisher service.EventPublisher
	logger    logger.Logger
}

func NewImageStore(u service.Uploader, p service.EventPublisher, log logger.Logger) *ImageStore {
	return &ImageStore{uploader: u, publisher: p, logger: log}
}

func (s *ImageStore) Put(ctx context.Context, f ImageFile, folder, name string) (*service.UploadResult, error) {
	if err := ValidateImage(f); err != nil {
		return nil, err
	}
	publicID := fmt.Sprintf("%s_%s", name, time.Now().UTC().Format("20060102_150405"))
	res, err := s.uploader.Upload(ctx, f.Reader, folder, publicID)
	if err != nil {
		return nil, apperror.NewInternal("failed to upload image", err)
	}
	return res, nil
}

// Discard removes a stored image in the background; a leftover file is only
// wasted storage.
func (s *ImageStore) Discard(publicID *string) {
	if publicID == nil || *publicID == "" {
		return
	}
	id := *publicID
	go func() {
		if err := s.uploader.Delete(context.Background(), id); err != nil {
			s.logger.Warn("Failed to delete old image", zap.String("public_id", id), zap.Error(err))
		}
	}()
}

func (s *ImageStore) Announce(evt service.PortfolioEvent) {
	go func() {
		if err := s.publisher.PublishPortfolioEvent(context.Background(), evt); err != nil {
			s.logger.Error("Failed to publish Kafka image event", err,
				zap.String("event_type", string(evt.EventType)),
				zap.String("resource_id", evt.ResourceID.String()),
			)
		}
	}()
}
