// Package gallery manages the image gallery attached to each venue.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/JonasLeetTheWay/eventisense/internal/auth"
	"github.com/JonasLeetTheWay/eventisense/internal/backend"
	"github.com/JonasLeetTheWay/eventisense/internal/models"
	"github.com/JonasLeetTheWay/eventisense/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	Bucket       = "venue-gallery"
	MaxImageSize = 5 << 20
)

var (
	ErrForbidden    = errors.New("venue belongs to another user")
	ErrNotFound     = errors.New("not found")
	ErrInvalidImage = errors.New("invalid image")
)

type Service struct {
	store   backend.Store
	objects storage.ObjectStore
	log     *zap.Logger
}

func NewService(store backend.Store, objects storage.ObjectStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, objects: objects, log: log}
}

// List returns the images of a venue in upload order.
func (s *Service) List(ctx context.Context, venueID uint) ([]models.VenueImage, error) {
	images, err := backend.SelectAll[models.VenueImage](ctx, s.store, backend.TableVenueImages, backend.Query{
		Where:   map[string]any{"venue_id": venueID},
		OrderBy: "id asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load images: %w", err)
	}
	return images, nil
}

// Upload stores the file under venues/<venue id>/<random name><ext> and
// records it against the venue.
func (s *Service) Upload(ctx context.Context, id auth.Identity, venueID uint, filename, contentType string, data []byte) (*models.VenueImage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidImage)
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidImage, MaxImageSize)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: content type %q", ErrInvalidImage, contentType)
	}
	if _, err := s.managedVenue(ctx, id, venueID); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("venues/%d/%s%s", venueID, uuid.NewString(), strings.ToLower(filepath.Ext(filename)))
	url, err := s.objects.Upload(ctx, Bucket, path, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	image := &models.VenueImage{VenueID: venueID, URL: url, StoragePath: path}
	if err := s.store.Insert(ctx, backend.TableVenueImages, image); err != nil {
		if cleanupErr := s.objects.Delete(ctx, Bucket, path); cleanupErr != nil {
			s.log.Warn("Failed to remove orphaned image", zap.String("path", path), zap.Error(cleanupErr))
		}
		return nil, fmt.Errorf("failed to record image: %w", err)
	}

	s.log.Info("Venue image uploaded", zap.Uint("venueID", venueID), zap.String("path", path))
	return image, nil
}

// Delete removes the stored object and its record. Images whose URL is not
// served from the gallery bucket are left untouched.
func (s *Service) Delete(ctx context.Context, id auth.Identity, imageID uint) error {
	image, err := backend.FindByID[models.VenueImage](ctx, s.store, backend.TableVenueImages, imageID)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return fmt.Errorf("image %d: %w", imageID, ErrNotFound)
		}
		return fmt.Errorf("failed to load image: %w", err)
	}
	if _, err := s.managedVenue(ctx, id, image.VenueID); err != nil {
		return err
	}

	path := image.StoragePath
	if path == "" {
		path, err = storage.PathFromPublicURL(s.objects.PublicURLPrefix(Bucket), image.URL)
		if err != nil {
			return err
		}
	}

	if err := s.objects.Delete(ctx, Bucket, path); err != nil {
		return fmt.Errorf("failed to delete image object: %w", err)
	}
	if err := s.store.Delete(ctx, backend.TableVenueImages, imageID); err != nil {
		return fmt.Errorf("failed to delete image record: %w", err)
	}

	s.log.Info("Venue image deleted", zap.Uint("imageID", imageID), zap.String("path", path))
	return nil
}

func (s *Service) managedVenue(ctx context.Context, id auth.Identity, venueID uint) (*models.Venue, error) {
	venue, err := backend.FindByID[models.Venue](ctx, s.store, backend.TableVenues, venueID)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, fmt.Errorf("venue %d: %w", venueID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load venue: %w", err)
	}
	if !id.CanManage(venue.OwnerID) {
		return nil, ErrForbidden
	}
	return venue, nil
}
