package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JonasLeetTheWay/eventisense/internal/auth"
	"github.com/JonasLeetTheWay/eventisense/internal/backend"
	"github.com/JonasLeetTheWay/eventisense/internal/config"
	"github.com/JonasLeetTheWay/eventisense/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenStore tracks tokens revoked by logout.
type TokenStore interface {
	auth.RevocationList
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
}

// Upstreams are the base URLs of the services behind the gateway.
type Upstreams struct {
	Directory string
	Budget    string
	Account   string
	Event     string
}

func DefaultUpstreams(cfg *config.Config) Upstreams {
	return Upstreams{
		Directory: fmt.Sprintf("http://localhost:%s", cfg.DirectoryServicePort),
		Budget:    fmt.Sprintf("http://localhost:%s", cfg.BudgetServicePort),
		Account:   fmt.Sprintf("http://localhost:%s", cfg.AccountServicePort),
		Event:     fmt.Sprintf("http://localhost:%s", cfg.EventServicePort),
	}
}

type Service struct {
	config    *config.Config
	store     backend.Store
	tokens    TokenStore
	client    *http.Client
	upstreams Upstreams
	log       *zap.Logger
}

type Option func(*Service)

func WithUpstreams(u Upstreams) Option {
	return func(s *Service) {
		s.upstreams = u
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

func NewService(cfg *config.Config, store backend.Store, tokens TokenStore, opts ...Option) *Service {
	s := &Service{
		config: cfg,
		store:  store,
		tokens: tokens,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		upstreams: DefaultUpstreams(cfg),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) SetupRoutes(r *gin.Engine) {
	authed := auth.Middleware(s.config, s.tokens)

	// Authentication routes
	r.POST("/auth/register", s.Register)
	r.POST("/auth/login", s.Login)
	r.POST("/auth/logout", authed, s.Logout)
	r.GET("/auth/me", authed, s.Me)

	// Public directory listings
	dir := r.Group("/directory")
	{
		dir.GET("/venues", s.ForwardToDirectoryService)
		dir.GET("/venues/:id/images", s.ForwardToDirectoryService)
		dir.GET("/suppliers", s.ForwardToDirectoryService)
		dir.GET("/planners", s.ForwardToDirectoryService)
		dir.GET("/events", s.ForwardToDirectoryService)
	}

	g := r.Group("/gallery")
	g.Use(authed)
	{
		g.POST("/venues/:id/images", s.ForwardToDirectoryService)
		g.DELETE("/images/:id", s.ForwardToDirectoryService)
	}

	b := r.Group("/budgets")
	b.Use(authed)
	{
		b.GET("", s.ForwardToBudgetService)
		b.POST("", s.ForwardToBudgetService)
		b.GET("/categories", s.ForwardToBudgetService)
		b.GET("/:id", s.ForwardToBudgetService)
		b.PUT("/:id", s.ForwardToBudgetService)
		b.DELETE("/:id", s.ForwardToBudgetService)
		b.POST("/:id/expenses", s.ForwardToBudgetService)
		b.DELETE("/:id/expenses/:expenseId", s.ForwardToBudgetService)
	}

	t := r.Group("/tickets")
	t.Use(authed)
	{
		t.GET("/mine", s.ForwardToAccountService)
		t.GET("/organizer", s.ForwardToAccountService)
		t.POST("", s.ForwardToAccountService)
		t.PUT("/:id/status", s.ForwardToAccountService)
	}

	r.GET("/events/:id", s.ForwardToEventService)
	e := r.Group("/events")
	e.Use(authed)
	{
		e.POST("", s.ForwardToEventService)
		e.PUT("/:id", s.ForwardToEventService)
		e.DELETE("/:id", s.ForwardToEventService)
	}

	admin := r.Group("/admin")
	admin.Use(authed, auth.RequireRole(models.RoleAdmin))
	{
		admin.GET("/stats", s.ForwardToAccountService)
	}

	// Health check
	r.GET("/health", s.HealthCheck)
}

func profileJSON(p models.Profile) gin.H {
	return gin.H{
		"id":          p.ID,
		"email":       p.Email,
		"fullName":    p.FullName,
		"companyName": p.CompanyName,
		"role":        p.Role,
	}
}

func (s *Service) findProfile(ctx context.Context, where map[string]any) (*models.Profile, error) {
	profiles, err := backend.SelectAll[models.Profile](ctx, s.store, backend.TableProfiles, backend.Query{Where: where})
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, backend.ErrNotFound
	}
	return &profiles[0], nil
}

func (s *Service) Register(c *gin.Context) {
	var req struct {
		Email       string      `json:"email" binding:"required,email"`
		Password    string      `json:"password" binding:"required,min=6"`
		FullName    string      `json:"fullName" binding:"required"`
		Phone       string      `json:"phone"`
		CompanyName string      `json:"companyName"`
		Role        models.Role `json:"role"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if !req.Role.Valid() || req.Role == models.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid role",
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	ctx := c.Request.Context()

	// Check if user already exists
	_, err := s.findProfile(ctx, map[string]any{"email": email})
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"error": "User already exists",
		})
		return
	}
	if !errors.Is(err, backend.ErrNotFound) {
		s.log.Error("Failed to look up profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create user",
		})
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create user",
		})
		return
	}

	profile := models.Profile{
		Email:       email,
		Password:    hashedPassword,
		FullName:    req.FullName,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
		Role:        req.Role,
	}
	if err := s.store.Insert(ctx, backend.TableProfiles, &profile); err != nil {
		s.log.Error("Failed to create profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create user",
		})
		return
	}

	token, err := auth.GenerateToken(s.config, auth.IdentityOf(profile))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate token",
		})
		return
	}

	s.log.Info("User registered", zap.Uint("userID", profile.ID), zap.String("role", string(profile.Role)))
	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  profileJSON(profile),
	})
}

func (s *Service) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	profile, err := s.findProfile(c.Request.Context(), map[string]any{
		"email": strings.ToLower(strings.TrimSpace(req.Email)),
	})
	if err != nil || !auth.VerifyPassword(req.Password, profile.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid credentials",
		})
		return
	}

	token, err := auth.GenerateToken(s.config, auth.IdentityOf(*profile))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate token",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  profileJSON(*profile),
	})
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *Service) Logout(c *gin.Context) {
	id, _ := auth.FromContext(c)
	if s.tokens != nil {
		if err := s.tokens.RevokeToken(c.Request.Context(), id.TokenID, s.config.JWTExpiry); err != nil {
			s.log.Error("Failed to revoke token", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to log out",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

func (s *Service) Me(c *gin.Context) {
	id, _ := auth.FromContext(c)

	profile, err := backend.FindByID[models.Profile](c.Request.Context(), s.store, backend.TableProfiles, id.UserID)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "User not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load user",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user": profileJSON(*profile),
	})
}

func (s *Service) ForwardToDirectoryService(c *gin.Context) {
	s.forwardRequest(c, s.upstreams.Directory)
}

func (s *Service) ForwardToBudgetService(c *gin.Context) {
	s.forwardRequest(c, s.upstreams.Budget)
}

func (s *Service) ForwardToAccountService(c *gin.Context) {
	s.forwardRequest(c, s.upstreams.Account)
}

func (s *Service) ForwardToEventService(c *gin.Context) {
	s.forwardRequest(c, s.upstreams.Event)
}

func (s *Service) forwardRequest(c *gin.Context, targetURL string) {
	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, targetURL+c.Request.URL.Path, c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create request",
		})
		return
	}

	for key, values := range c.Request.Header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.URL.RawQuery = c.Request.URL.RawQuery

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("Upstream unavailable", zap.String("target", targetURL), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Service unavailable",
		})
		return
	}
	defer resp.Body.Close()

	for key, values := range resp.Header {
		if key == "Content-Length" || key == "Content-Type" {
			continue
		}
		for _, value := range values {
			c.Header(key, value)
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to read response",
		})
		return
	}

	c.Data(resp.StatusCode, resp.Header.Get("Content-Type"), body)
}

func (s *Service) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "api-gateway",
		"timestamp": time.Now(),
	})
}
