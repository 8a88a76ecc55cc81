package gallery

import (
	"context"
	"strings"
	"testing"

	"github.com/JonasLeetTheWay/eventisense/internal/auth"
	"github.com/JonasLeetTheWay/eventisense/internal/backend"
	"github.com/JonasLeetTheWay/eventisense/internal/models"
	"github.com/JonasLeetTheWay/eventisense/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	manager  = auth.Identity{UserID: 10, Role: models.RoleVenueManager}
	stranger = auth.Identity{UserID: 11, Role: models.RoleVenueManager}
)

func setup(t *testing.T) (*Service, *gorm.DB, *storage.MemoryStore, uint) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	venue := models.Venue{Name: "Grand Hall", OwnerID: manager.UserID}
	require.NoError(t, db.Create(&venue).Error)

	objects := storage.NewMemoryStore()
	return NewService(backend.NewGormStore(db), objects, nil), db, objects, venue.ID
}

func TestUpload(t *testing.T) {
	svc, _, objects, venueID := setup(t)
	ctx := context.Background()

	image, err := svc.Upload(ctx, manager, venueID, "Stage.JPG", "image/jpeg", []byte("jpeg"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(image.StoragePath, "venues/"), image.StoragePath)
	assert.True(t, strings.HasSuffix(image.StoragePath, ".jpg"), image.StoragePath)
	assert.Equal(t, objects.PublicURLPrefix(Bucket)+image.StoragePath, image.URL)
	assert.True(t, objects.Has(Bucket, image.StoragePath))

	images, err := svc.List(ctx, venueID)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, image.URL, images[0].URL)
}

func TestUpload_Rejections(t *testing.T) {
	svc, _, _, venueID := setup(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, manager, venueID, "a.txt", "text/plain", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = svc.Upload(ctx, manager, venueID, "a.png", "image/png", nil)
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = svc.Upload(ctx, stranger, venueID, "a.png", "image/png", []byte("x"))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Upload(ctx, manager, venueID+100, "a.png", "image/png", []byte("x"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_OwnedObject(t *testing.T) {
	svc, _, objects, venueID := setup(t)
	ctx := context.Background()

	image, err := svc.Upload(ctx, manager, venueID, "a.png", "image/png", []byte("png"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, stranger, image.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, manager, image.ID))

	assert.False(t, objects.Has(Bucket, image.StoragePath))
	images, err := svc.List(ctx, venueID)
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestDelete_DerivesPathFromURL(t *testing.T) {
	svc, db, objects, venueID := setup(t)
	ctx := context.Background()

	url, err := objects.Upload(ctx, Bucket, "venues/legacy.png", []byte("png"), "image/png")
	require.NoError(t, err)
	legacy := models.VenueImage{VenueID: venueID, URL: url}
	require.NoError(t, db.Create(&legacy).Error)

	require.NoError(t, svc.Delete(ctx, manager, legacy.ID))
	assert.False(t, objects.Has(Bucket, "venues/legacy.png"))
}

func TestDelete_ForeignURLDeletesNothing(t *testing.T) {
	svc, db, _, venueID := setup(t)
	ctx := context.Background()

	external := models.VenueImage{VenueID: venueID, URL: "https://images.unsplash.com/photo-123"}
	require.NoError(t, db.Create(&external).Error)

	err := svc.Delete(ctx, manager, external.ID)
	assert.ErrorIs(t, err, storage.ErrForeignURL)

	images, err := svc.List(ctx, venueID)
	require.NoError(t, err)
	assert.Len(t, images, 1)
}
