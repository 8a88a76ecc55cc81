package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JonasLeetTheWay/eventisense/internal/auth"
	"github.com/JonasLeetTheWay/eventisense/internal/backend"
	"github.com/JonasLeetTheWay/eventisense/internal/config"
	"github.com/JonasLeetTheWay/eventisense/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Service struct {
	config  *config.Config
	store   backend.Store
	revoked auth.RevocationList
	log     *zap.Logger
}

func NewService(cfg *config.Config, store backend.Store, revoked auth.RevocationList, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		config:  cfg,
		store:   store,
		revoked: revoked,
		log:     log,
	}
}

func (s *Service) SetupRoutes(r *gin.Engine) {
	r.GET("/events/:id", s.GetEvent)

	e := r.Group("/events")
	e.Use(auth.Middleware(s.config, s.revoked))
	{
		e.POST("", s.CreateEvent)
		e.PUT("/:id", s.UpdateEvent)
		e.DELETE("/:id", s.DeleteEvent)
	}

	r.GET("/health", s.HealthCheck)
}

// EventInput is the writable part of an event.
type EventInput struct {
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description"`
	Date        time.Time `json:"date" binding:"required"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	TicketPrice *float64  `json:"ticketPrice" binding:"omitempty,gte=0"`
	Capacity    *int      `json:"capacity" binding:"omitempty,gte=1"`
	Tags        []string  `json:"tags"`
}

func (in EventInput) changes() (map[string]any, error) {
	tags, err := json.Marshal(cleanTags(in.Tags))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"name":         strings.TrimSpace(in.Name),
		"description":  in.Description,
		"date":         in.Date,
		"location":     strings.TrimSpace(in.Location),
		"category":     strings.TrimSpace(in.Category),
		"ticket_price": in.TicketPrice,
		"capacity":     in.Capacity,
		"tags":         string(tags),
	}, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (s *Service) GetEvent(c *gin.Context) {
	eventID, ok := paramID(c)
	if !ok {
		return
	}

	event, err := backend.FindByID[models.Event](c.Request.Context(), s.store, backend.TableEvents, eventID)
	if err != nil {
		s.fetchError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (s *Service) CreateEvent(c *gin.Context) {
	id, _ := auth.FromContext(c)
	if !id.IsAdmin() && !id.Role.CanOrganize() {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Only venue managers, suppliers and event planners can create events",
		})
		return
	}

	var req EventInput
	if !bindEvent(c, &req) {
		return
	}

	event := models.Event{
		OrganizerID: id.UserID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Date:        req.Date,
		Location:    strings.TrimSpace(req.Location),
		Category:    strings.TrimSpace(req.Category),
		TicketPrice: req.TicketPrice,
		Capacity:    req.Capacity,
		Tags:        cleanTags(req.Tags),
	}
	if err := s.store.Insert(c.Request.Context(), backend.TableEvents, &event); err != nil {
		s.log.Error("Failed to create event", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create event",
			"details": err.Error(),
		})
		return
	}

	s.log.Info("Event created", zap.Uint("eventID", event.ID), zap.Uint("organizerID", id.UserID))
	c.JSON(http.StatusCreated, event)
}

func (s *Service) UpdateEvent(c *gin.Context) {
	id, _ := auth.FromContext(c)
	eventID, ok := paramID(c)
	if !ok {
		return
	}

	event, ok := s.owned(c, id, eventID)
	if !ok {
		return
	}

	var req EventInput
	if !bindEvent(c, &req) {
		return
	}

	changes, err := req.changes()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid event data",
			"details": err.Error(),
		})
		return
	}

	if err := s.store.Update(c.Request.Context(), backend.TableEvents, event.ID, changes); err != nil {
		s.fetchError(c, err)
		return
	}

	// Re-read so the response reflects what the store holds.
	updated, err := backend.FindByID[models.Event](c.Request.Context(), s.store, backend.TableEvents, event.ID)
	if err != nil {
		s.fetchError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (s *Service) DeleteEvent(c *gin.Context) {
	id, _ := auth.FromContext(c)
	eventID, ok := paramID(c)
	if !ok {
		return
	}

	event, ok := s.owned(c, id, eventID)
	if !ok {
		return
	}

	if err := s.store.Delete(c.Request.Context(), backend.TableEvents, event.ID); err != nil {
		s.fetchError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event deleted successfully",
	})
}

// bindEvent decodes the body and rejects a blank name.
func bindEvent(c *gin.Context, req *EventInput) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid event data",
			"details": err.Error(),
		})
		return false
	}
	if strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing required fields: name",
		})
		return false
	}
	return true
}

// owned loads the event and checks that the caller organizes it.
func (s *Service) owned(c *gin.Context, id auth.Identity, eventID uint) (*models.Event, bool) {
	event, err := backend.FindByID[models.Event](c.Request.Context(), s.store, backend.TableEvents, eventID)
	if err != nil {
		s.fetchError(c, err)
		return nil, false
	}
	if !id.CanManage(event.OrganizerID) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Access denied",
		})
		return nil, false
	}
	return event, true
}

func (s *Service) fetchError(c *gin.Context, err error) {
	if errors.Is(err, backend.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Event not found",
		})
		return
	}
	s.log.Error("Event store failure", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Failed to fetch event",
		"details": err.Error(),
	})
}

func paramID(c *gin.Context) (uint, bool) {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid event ID",
		})
		return 0, false
	}
	return uint(eventID), true
}

func (s *Service) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "event-service",
	})
}
