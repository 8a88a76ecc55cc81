package account

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/JonasLeetTheWay/eventisense/internal/auth"
	"github.com/JonasLeetTheWay/eventisense/internal/backend"
	"github.com/JonasLeetTheWay/eventisense/internal/config"
	"github.com/JonasLeetTheWay/eventisense/internal/models"
	"github.com/JonasLeetTheWay/eventisense/internal/payment"
	"github.com/JonasLeetTheWay/eventisense/internal/stats"
	"github.com/JonasLeetTheWay/eventisense/internal/tickets"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Service struct {
	config  *config.Config
	store   backend.Store
	tickets *tickets.Service
	revoked auth.RevocationList
	log     *zap.Logger
}

func NewService(cfg *config.Config, store backend.Store, payments payment.Provider, revoked auth.RevocationList, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		config:  cfg,
		store:   store,
		tickets: tickets.NewService(store, payments, log),
		revoked: revoked,
		log:     log,
	}
}

// WithPurchaseLock serializes ticket purchases per event through l.
func (s *Service) WithPurchaseLock(l tickets.Locker) *Service {
	s.tickets.WithLocker(l)
	return s
}

func (s *Service) SetupRoutes(r *gin.Engine) {
	authed := auth.Middleware(s.config, s.revoked)

	t := r.Group("/tickets")
	t.Use(authed)
	{
		t.GET("/mine", s.MyTickets)
		t.GET("/organizer", s.OrganizerTickets)
		t.POST("", s.PurchaseTicket)
		t.PUT("/:id/status", s.SetTicketStatus)
	}

	admin := r.Group("/admin")
	admin.Use(authed, auth.RequireRole(models.RoleAdmin))
	{
		admin.GET("/stats", s.UserStats)
	}

	r.GET("/health", s.HealthCheck)
}

func (s *Service) MyTickets(c *gin.Context) {
	id, _ := auth.FromContext(c)

	views, err := s.tickets.ForUser(c.Request.Context(), id)
	if err != nil {
		s.fail(c, "Failed to load tickets", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tickets": views,
		"count":   len(views),
	})
}

func (s *Service) OrganizerTickets(c *gin.Context) {
	id, _ := auth.FromContext(c)
	if !id.IsAdmin() && !id.Role.CanOrganize() {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Access denied",
		})
		return
	}

	views, err := s.tickets.ForOrganizer(c.Request.Context(), id)
	if err != nil {
		s.fail(c, "Failed to load tickets", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tickets": views,
		"count":   len(views),
	})
}

func (s *Service) PurchaseTicket(c *gin.Context) {
	id, _ := auth.FromContext(c)

	var req struct {
		EventID  uint `json:"eventId" binding:"required"`
		Quantity int  `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ticket, err := s.tickets.Purchase(c.Request.Context(), id, req.EventID, req.Quantity)
	if err != nil {
		s.fail(c, "Failed to purchase ticket", err)
		return
	}

	if ticket.Status == models.TicketRejected {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":   "Payment failed",
			"details": ticket.FailureReason,
			"ticket":  ticket,
		})
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (s *Service) SetTicketStatus(c *gin.Context) {
	id, _ := auth.FromContext(c)
	ticketID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid ticket ID",
		})
		return
	}

	var req struct {
		Status models.TicketStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ticket, err := s.tickets.SetStatus(c.Request.Context(), id, uint(ticketID), req.Status)
	if err != nil {
		s.fail(c, "Failed to update ticket", err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// UserStats reports how registered profiles split across roles.
func (s *Service) UserStats(c *gin.Context) {
	profiles, err := backend.SelectAll[models.Profile](c.Request.Context(), s.store, backend.TableProfiles, backend.Query{
		Columns: []string{"id", "role"},
	})
	if err != nil {
		s.fail(c, "Failed to load profiles", err)
		return
	}

	dist := stats.Roles(profiles)
	c.JSON(http.StatusOK, gin.H{
		"distribution": dist,
		"chart":        dist.Chart(),
	})
}

func (s *Service) fail(c *gin.Context, msg string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, tickets.ErrInvalidQuantity), errors.Is(err, tickets.ErrInvalidStatus):
		status = http.StatusBadRequest
	case errors.Is(err, tickets.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, tickets.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, tickets.ErrSoldOut), errors.Is(err, tickets.ErrBusy), errors.Is(err, tickets.ErrFinalStatus):
		status = http.StatusConflict
	default:
		s.log.Error(msg, zap.Error(err))
	}
	c.JSON(status, gin.H{
		"error":   msg,
		"details": err.Error(),
	})
}

func (s *Service) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "account-service",
	})
}
