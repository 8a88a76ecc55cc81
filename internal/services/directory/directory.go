package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JonasLeetTheWay/eventisense/internal/auth"
	"github.com/JonasLeetTheWay/eventisense/internal/backend"
	"github.com/JonasLeetTheWay/eventisense/internal/config"
	views "github.com/JonasLeetTheWay/eventisense/internal/directory"
	"github.com/JonasLeetTheWay/eventisense/internal/filter"
	"github.com/JonasLeetTheWay/eventisense/internal/gallery"
	"github.com/JonasLeetTheWay/eventisense/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// sortable lists the columns a listing may be ordered by.
var sortable = map[string][]string{
	backend.TableVenues:        {"id", "name", "price", "capacity", "rating", "created_at"},
	backend.TableSuppliers:     {"id", "name", "rating", "created_at"},
	backend.TableEventPlanners: {"id", "company_name", "years_experience", "created_at"},
	backend.TableEvents:        {"id", "name", "date", "ticket_price", "created_at"},
}

type Service struct {
	config  *config.Config
	store   backend.Store
	gallery *gallery.Service
	revoked auth.RevocationList
	log     *zap.Logger
}

func NewService(cfg *config.Config, store backend.Store, objects storage.ObjectStore, revoked auth.RevocationList, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		config:  cfg,
		store:   store,
		gallery: gallery.NewService(store, objects, log),
		revoked: revoked,
		log:     log,
	}
}

func (s *Service) SetupRoutes(r *gin.Engine) {
	dir := r.Group("/directory")
	{
		dir.GET("/venues", s.ListVenues)
		dir.GET("/venues/:id/images", s.ListVenueImages)
		dir.GET("/suppliers", s.ListSuppliers)
		dir.GET("/planners", s.ListPlanners)
		dir.GET("/events", s.ListEvents)
	}

	g := r.Group("/gallery")
	g.Use(auth.Middleware(s.config, s.revoked))
	{
		g.POST("/venues/:id/images", s.UploadVenueImage)
		g.DELETE("/images/:id", s.DeleteVenueImage)
	}

	r.GET("/health", s.HealthCheck)
}

// loadView fetches one listing for the request and responds with the
// filtered items. A fresh view is mounted per request.
func loadView[T, C any](c *gin.Context, v *views.View[T, C], criteria C, what string) {
	defer v.Close()
	v.SetCriteria(criteria)

	if err := v.Load(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load " + what,
			"details": err.Error(),
		})
		return
	}

	state := v.State()
	c.JSON(http.StatusOK, gin.H{
		"items": state.Items,
		"count": len(state.Items),
		"total": v.Total(),
	})
}

func (s *Service) ListVenues(c *gin.Context) {
	order, ok := s.order(c, backend.TableVenues)
	if !ok {
		return
	}
	criteria := filter.VenueCriteria{
		SearchQuery: c.Query("search"),
		Price:       c.Query("price"),
		Capacity:    c.Query("capacity"),
		VenueType:   c.Query("type"),
	}
	loadView(c, views.NewVenues(s.store, order), criteria, "venues")
}

func (s *Service) ListSuppliers(c *gin.Context) {
	order, ok := s.order(c, backend.TableSuppliers)
	if !ok {
		return
	}
	minRating, err := queryFloat(c, "minRating")
	if err != nil {
		badQuery(c, err)
		return
	}
	criteria := filter.SupplierCriteria{
		SearchQuery: c.Query("search"),
		Location:    c.Query("location"),
		ServiceType: c.Query("service"),
		MinRating:   minRating,
	}
	loadView(c, views.NewSuppliers(s.store, order), criteria, "suppliers")
}

func (s *Service) ListPlanners(c *gin.Context) {
	order, ok := s.order(c, backend.TableEventPlanners)
	if !ok {
		return
	}
	minExperience := 0
	if raw := c.Query("minExperience"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badQuery(c, fmt.Errorf("minExperience: %w", err))
			return
		}
		minExperience = n
	}
	criteria := filter.PlannerCriteria{
		SearchQuery:    c.Query("search"),
		Location:       c.Query("location"),
		Specialization: c.Query("specialization"),
		MinExperience:  minExperience,
	}
	loadView(c, views.NewPlanners(s.store, order), criteria, "event planners")
}

func (s *Service) ListEvents(c *gin.Context) {
	order, ok := s.order(c, backend.TableEvents)
	if !ok {
		return
	}
	criteria, err := eventCriteria(c)
	if err != nil {
		badQuery(c, err)
		return
	}
	loadView(c, views.NewEvents(s.store, order), criteria, "events")
}

func eventCriteria(c *gin.Context) (filter.EventCriteria, error) {
	criteria := filter.EventCriteria{
		SearchQuery: c.Query("search"),
		Category:    c.Query("category"),
	}
	var err error
	if criteria.MinPrice, err = queryFloat(c, "minPrice"); err != nil {
		return criteria, err
	}
	if criteria.MaxPrice, err = queryFloat(c, "maxPrice"); err != nil {
		return criteria, err
	}
	if criteria.StartDate, err = parseDate(c.Query("startDate"), false); err != nil {
		return criteria, fmt.Errorf("startDate: %w", err)
	}
	if criteria.EndDate, err = parseDate(c.Query("endDate"), true); err != nil {
		return criteria, fmt.Errorf("endDate: %w", err)
	}
	return criteria, nil
}

// parseDate accepts RFC 3339 or a bare date. A bare end date covers the
// whole day.
func parseDate(raw string, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func queryFloat(c *gin.Context, key string) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: %q is not a finite number", key, raw)
	}
	return v, nil
}

// order turns ?order=price:asc into a store ordering, rejecting unknown
// columns. The default is newest first.
func (s *Service) order(c *gin.Context, table string) (string, bool) {
	raw := c.Query("order")
	if raw == "" {
		return "id desc", true
	}
	column, dir, _ := strings.Cut(raw, ":")
	dir = strings.ToLower(dir)
	if dir == "" {
		dir = "asc"
	}
	if dir != "asc" && dir != "desc" {
		badQuery(c, fmt.Errorf("order: unknown direction %q", dir))
		return "", false
	}
	for _, allowed := range sortable[table] {
		if column == allowed {
			return column + " " + dir, true
		}
	}
	badQuery(c, fmt.Errorf("order: cannot sort by %q", column))
	return "", false
}

func badQuery(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid query parameters",
		"details": err.Error(),
	})
}

func (s *Service) ListVenueImages(c *gin.Context) {
	venueID, ok := paramID(c, "id")
	if !ok {
		return
	}
	images, err := s.gallery.List(c.Request.Context(), venueID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load images",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"images": images,
		"count":  len(images),
	})
}

func (s *Service) UploadVenueImage(c *gin.Context) {
	id, _ := auth.FromContext(c)
	venueID, ok := paramID(c, "id")
	if !ok {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Image file required",
			"details": err.Error(),
		})
		return
	}
	if file.Size > gallery.MaxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": "Image too large",
		})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to read image",
			"details": err.Error(),
		})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to read image",
			"details": err.Error(),
		})
		return
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	image, err := s.gallery.Upload(c.Request.Context(), id, venueID, file.Filename, contentType, data)
	if err != nil {
		s.galleryError(c, "Failed to upload image", err)
		return
	}
	c.JSON(http.StatusCreated, image)
}

func (s *Service) DeleteVenueImage(c *gin.Context) {
	id, _ := auth.FromContext(c)
	imageID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := s.gallery.Delete(c.Request.Context(), id, imageID); err != nil {
		s.galleryError(c, "Failed to delete image", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Image deleted successfully",
	})
}

func (s *Service) galleryError(c *gin.Context, msg string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, gallery.ErrInvalidImage):
		status = http.StatusBadRequest
	case errors.Is(err, gallery.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, gallery.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrForeignURL):
		status = http.StatusConflict
	case errors.Is(err, context.Canceled):
		status = http.StatusRequestTimeout
	}
	if status == http.StatusInternalServerError {
		s.log.Error(msg, zap.Error(err))
	}
	c.JSON(status, gin.H{
		"error":   msg,
		"details": err.Error(),
	})
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return 0, false
	}
	return uint(id), true
}

func (s *Service) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "directory-service",
	})
}
