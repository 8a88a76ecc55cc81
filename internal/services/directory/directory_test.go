package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"testing"
	"time"

	"github.com/JonasLeetTheWay/eventisense/internal/auth"
	"github.com/JonasLeetTheWay/eventisense/internal/backend"
	"github.com/JonasLeetTheWay/eventisense/internal/config"
	"github.com/JonasLeetTheWay/eventisense/internal/models"
	"github.com/JonasLeetTheWay/eventisense/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ptr[T any](v T) *T { return &v }

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour}
}

type brokenStore struct{ backend.Store }

func (brokenStore) Select(ctx context.Context, table string, q backend.Query, dest any) error {
	return errors.New("connection refused")
}

func setup(t *testing.T) (*gin.Engine, *gorm.DB, *storage.MemoryStore) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	objects := storage.NewMemoryStore()
	r := gin.New()
	NewService(testConfig(), backend.NewGormStore(db), objects, nil, nil).SetupRoutes(r)
	return r, db, objects
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
	Total int `json:"total"`
}

func get[T any](t *testing.T, r http.Handler, url string) (int, listResponse[T]) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	var body listResponse[T]
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w.Code, body
}

func TestListVenues(t *testing.T) {
	r, db, _ := setup(t)
	require.NoError(t, db.Create(&models.Venue{Name: "Grand Hall", Price: ptr(4000.0), Capacity: ptr(300),
		VenueTypes: []models.VenueType{{Name: "Ballroom"}}}).Error)
	require.NoError(t, db.Create(&models.Venue{Name: "Garden", Price: ptr(800.0), Capacity: ptr(100)}).Error)
	require.NoError(t, db.Create(&models.Venue{Name: "Unpriced", Capacity: ptr(50)}).Error)

	code, body := get[models.Venue](t, r, "/directory/venues")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3, body.Count)
	assert.Equal(t, "Unpriced", body.Items[0].Name)

	code, body = get[models.Venue](t, r, "/directory/venues?price=1000-5000&type=ballroom")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "Grand Hall", body.Items[0].Name)
	assert.Equal(t, 3, body.Total)

	code, body = get[models.Venue](t, r, "/directory/venues?order=price:asc&capacity=90%2B")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 2, body.Count)
	assert.Equal(t, "Garden", body.Items[0].Name)
}

func TestListVenues_BadOrder(t *testing.T) {
	r, _, _ := setup(t)

	code, _ := get[models.Venue](t, r, "/directory/venues?order=password:asc")
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = get[models.Venue](t, r, "/directory/venues?order=name:sideways")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestListVenues_FetchFailure(t *testing.T) {
	r := gin.New()
	NewService(testConfig(), brokenStore{}, storage.NewMemoryStore(), nil, nil).SetupRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/directory/venues", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to load venues")
}

func TestListSuppliersAndPlanners(t *testing.T) {
	r, db, _ := setup(t)
	require.NoError(t, db.Create(&models.Supplier{Name: "Bloom", City: "Jakarta", Rating: ptr(4.6),
		Services: []models.SupplierService{{ServiceName: "Floral Decoration"}}}).Error)
	require.NoError(t, db.Create(&models.Supplier{Name: "Beats", City: "Bandung", Rating: ptr(3.9)}).Error)
	require.NoError(t, db.Create(&models.EventPlanner{CompanyName: "Plan Co", City: "Jakarta", YearsExperience: ptr(6)}).Error)

	code, suppliers := get[models.Supplier](t, r, "/directory/suppliers?service=floral&minRating=4")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 1, suppliers.Count)
	assert.Equal(t, "Bloom", suppliers.Items[0].Name)

	code, _ = get[models.Supplier](t, r, "/directory/suppliers?minRating=high")
	assert.Equal(t, http.StatusBadRequest, code)

	code, planners := get[models.EventPlanner](t, r, "/directory/planners?location=jakarta&minExperience=5")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, planners.Count)
}

func TestListings_RejectNonFiniteNumbers(t *testing.T) {
	r, db, _ := setup(t)
	require.NoError(t, db.Create(&models.Supplier{Name: "Bloom", City: "Jakarta", Rating: ptr(4.6)}).Error)

	for _, raw := range []string{"NaN", "Inf", "-Inf"} {
		code, _ := get[models.Supplier](t, r, "/directory/suppliers?minRating="+raw)
		assert.Equal(t, http.StatusBadRequest, code, raw)
		code, _ = get[models.Event](t, r, "/directory/events?minPrice="+raw)
		assert.Equal(t, http.StatusBadRequest, code, raw)
	}
}

func TestListEvents_DateOnlyEndDateCoversWholeDay(t *testing.T) {
	r, db, _ := setup(t)
	require.NoError(t, db.Create(&models.Event{Name: "Late Show", Category: "Music",
		Date: time.Date(2026, 12, 12, 21, 0, 0, 0, time.UTC), TicketPrice: ptr(100.0)}).Error)
	require.NoError(t, db.Create(&models.Event{Name: "Next Day", Category: "Music",
		Date: time.Date(2026, 12, 13, 9, 0, 0, 0, time.UTC), TicketPrice: ptr(100.0)}).Error)

	code, body := get[models.Event](t, r, "/directory/events?startDate=2026-12-12&endDate=2026-12-12")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "Late Show", body.Items[0].Name)

	code, _ = get[models.Event](t, r, "/directory/events?endDate=tomorrow")
	assert.Equal(t, http.StatusBadRequest, code)
}

func uploadRequest(t *testing.T, url, token string, data []byte) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="stage.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestGallery_UploadAndDelete(t *testing.T) {
	r, db, objects := setup(t)
	owner := models.Profile{Email: "venue@example.com", Password: "x", Role: models.RoleVenueManager}
	require.NoError(t, db.Create(&owner).Error)
	venue := models.Venue{Name: "Hall", OwnerID: owner.ID}
	require.NoError(t, db.Create(&venue).Error)

	token, err := auth.GenerateToken(testConfig(), auth.IdentityOf(owner))
	require.NoError(t, err)
	url := "/gallery/venues/" + itoa(venue.ID) + "/images"

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, url, "", []byte("png")))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, url, token, []byte("png")))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var image models.VenueImage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &image))
	assert.True(t, objects.Has("venue-gallery", image.StoragePath))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/directory/venues/"+itoa(venue.ID)+"/images", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), image.URL)

	req := httptest.NewRequest(http.MethodDelete, "/gallery/images/"+itoa(image.ID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, objects.Has("venue-gallery", image.StoragePath))
}

func TestGallery_DeleteForeignImage(t *testing.T) {
	r, db, _ := setup(t)
	owner := models.Profile{Email: "venue@example.com", Password: "x", Role: models.RoleVenueManager}
	require.NoError(t, db.Create(&owner).Error)
	venue := models.Venue{Name: "Hall", OwnerID: owner.ID}
	require.NoError(t, db.Create(&venue).Error)
	image := models.VenueImage{VenueID: venue.ID, URL: "https://images.example.org/hall.jpg"}
	require.NoError(t, db.Create(&image).Error)

	token, err := auth.GenerateToken(testConfig(), auth.IdentityOf(owner))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/gallery/images/"+itoa(image.ID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
