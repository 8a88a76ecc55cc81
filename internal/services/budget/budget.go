package budget

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/JonasLeetTheWay/eventisense/internal/auth"
	"github.com/JonasLeetTheWay/eventisense/internal/backend"
	core "github.com/JonasLeetTheWay/eventisense/internal/budget"
	"github.com/JonasLeetTheWay/eventisense/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Service struct {
	config  *config.Config
	budgets *core.Service
	revoked auth.RevocationList
	log     *zap.Logger
}

func NewService(cfg *config.Config, store backend.Store, revoked auth.RevocationList, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		config:  cfg,
		budgets: core.NewService(store, log),
		revoked: revoked,
		log:     log,
	}
}

func (s *Service) SetupRoutes(r *gin.Engine) {
	b := r.Group("/budgets")
	b.Use(auth.Middleware(s.config, s.revoked))
	{
		b.GET("", s.ListBudgets)
		b.GET("/categories", s.Categories)
		b.POST("", s.CreateBudget)
		b.GET("/:id", s.GetBudget)
		b.PUT("/:id", s.UpdateBudget)
		b.DELETE("/:id", s.DeleteBudget)
		b.POST("/:id/expenses", s.AddExpense)
		b.DELETE("/:id/expenses/:expenseId", s.DeleteExpense)
	}

	r.GET("/health", s.HealthCheck)
}

func (s *Service) ListBudgets(c *gin.Context) {
	id, _ := auth.FromContext(c)

	overview, err := s.budgets.Overview(c.Request.Context(), id)
	if err != nil {
		s.fail(c, "Failed to load budgets", err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (s *Service) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": core.SuggestedCategories,
	})
}

func (s *Service) GetBudget(c *gin.Context) {
	id, _ := auth.FromContext(c)
	budgetID, ok := paramID(c, "id")
	if !ok {
		return
	}

	detail, err := s.budgets.Detail(c.Request.Context(), id, budgetID)
	if err != nil {
		s.fail(c, "Failed to load budget", err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Service) CreateBudget(c *gin.Context) {
	id, _ := auth.FromContext(c)

	var req core.BudgetInput
	if !bind(c, &req) {
		return
	}

	detail, err := s.budgets.CreateBudget(c.Request.Context(), id, req)
	if err != nil {
		s.fail(c, "Failed to create budget", err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

func (s *Service) UpdateBudget(c *gin.Context) {
	id, _ := auth.FromContext(c)
	budgetID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req core.BudgetInput
	if !bind(c, &req) {
		return
	}

	detail, err := s.budgets.UpdateBudget(c.Request.Context(), id, budgetID, req)
	if err != nil {
		s.fail(c, "Failed to update budget", err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Service) DeleteBudget(c *gin.Context) {
	id, _ := auth.FromContext(c)
	budgetID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := s.budgets.DeleteBudget(c.Request.Context(), id, budgetID); err != nil {
		s.fail(c, "Failed to delete budget", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Budget deleted successfully",
	})
}

func (s *Service) AddExpense(c *gin.Context) {
	id, _ := auth.FromContext(c)
	budgetID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req core.ExpenseInput
	if !bind(c, &req) {
		return
	}
	req.BudgetID = budgetID

	detail, err := s.budgets.AddExpense(c.Request.Context(), id, req)
	if err != nil {
		s.fail(c, "Failed to add expense", err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

func (s *Service) DeleteExpense(c *gin.Context) {
	id, _ := auth.FromContext(c)
	budgetID, ok := paramID(c, "id")
	if !ok {
		return
	}
	expenseID, ok := paramID(c, "expenseId")
	if !ok {
		return
	}

	detail, err := s.budgets.DeleteExpense(c.Request.Context(), id, budgetID, expenseID)
	if err != nil {
		s.fail(c, "Failed to delete expense", err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func bind(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return false
	}
	return true
}

func (s *Service) fail(c *gin.Context, msg string, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": verr.Fields,
		})
		return
	case errors.Is(err, core.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		return
	}

	s.log.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
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
		"service": "budget-service",
	})
}
