package budget

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonasLeetTheWay/eventisense/internal/auth"
	"github.com/JonasLeetTheWay/eventisense/internal/backend"
	"github.com/JonasLeetTheWay/eventisense/internal/chart"
	"github.com/JonasLeetTheWay/eventisense/internal/models"
	"go.uber.org/zap"
)

var (
	ErrForbidden = errors.New("budget belongs to another user")
	ErrNotFound  = errors.New("budget not found")
)

type Overview struct {
	Totals  Totals    `json:"totals"`
	Budgets []Summary `json:"budgets"`
}

type Detail struct {
	Summary    Summary          `json:"summary"`
	Expenses   []models.Expense `json:"expenses"`
	Categories []CategoryAmount `json:"categories"`
	Chart      chart.Data       `json:"chart"`
}

type Service struct {
	store backend.Store
	log   *zap.Logger
}

func NewService(store backend.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log}
}

// Overview loads every budget the caller owns together with its expenses.
func (s *Service) Overview(ctx context.Context, id auth.Identity) (*Overview, error) {
	budgets, err := backend.SelectAll[models.Budget](ctx, s.store, backend.TableBudgets, backend.Query{
		Where:   map[string]any{"owner_id": id.UserID},
		OrderBy: "id desc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load budgets: %w", err)
	}

	ids := make([]uint, len(budgets))
	for i, b := range budgets {
		ids[i] = b.ID
	}
	byBudget := make(map[uint][]models.Expense, len(budgets))
	if len(ids) > 0 {
		expenses, err := backend.SelectAll[models.Expense](ctx, s.store, backend.TableExpenses, backend.Query{
			Where: map[string]any{"budget_id": ids},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load expenses: %w", err)
		}
		for _, e := range expenses {
			byBudget[e.BudgetID] = append(byBudget[e.BudgetID], e)
		}
	}

	all := make([]WithExpenses, len(budgets))
	summaries := make([]Summary, len(budgets))
	for i, b := range budgets {
		all[i] = WithExpenses{Budget: b, Expenses: byBudget[b.ID]}
		summaries[i] = Summarize(b, byBudget[b.ID])
	}

	return &Overview{Totals: ComputeTotals(all), Budgets: summaries}, nil
}

// Detail loads one budget and recomputes its summary from the live expense
// list. A failed expense fetch is returned as an error, never as zero spend.
func (s *Service) Detail(ctx context.Context, id auth.Identity, budgetID uint) (*Detail, error) {
	b, err := s.ownedBudget(ctx, id, budgetID)
	if err != nil {
		return nil, err
	}

	expenses, err := backend.SelectAll[models.Expense](ctx, s.store, backend.TableExpenses, backend.Query{
		Where:   map[string]any{"budget_id": b.ID},
		OrderBy: "id desc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}

	return &Detail{
		Summary:    Summarize(*b, expenses),
		Expenses:   expenses,
		Categories: ByCategory(expenses),
		Chart:      Breakdown(expenses),
	}, nil
}

func (s *Service) CreateBudget(ctx context.Context, id auth.Identity, in BudgetInput) (*Detail, error) {
	if err := Validate(&in); err != nil {
		return nil, err
	}

	b := &models.Budget{
		OwnerID:     id.UserID,
		EventID:     in.EventID,
		Name:        in.Name,
		TotalBudget: in.TotalBudget,
	}
	if err := s.store.Insert(ctx, backend.TableBudgets, b); err != nil {
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}
	s.log.Info("Budget created", zap.Uint("budgetID", b.ID), zap.Uint("ownerID", id.UserID))

	return s.Detail(ctx, id, b.ID)
}

func (s *Service) UpdateBudget(ctx context.Context, id auth.Identity, budgetID uint, in BudgetInput) (*Detail, error) {
	if err := Validate(&in); err != nil {
		return nil, err
	}
	if _, err := s.ownedBudget(ctx, id, budgetID); err != nil {
		return nil, err
	}

	changes := map[string]any{
		"name":         in.Name,
		"event_id":     in.EventID,
		"total_budget": in.TotalBudget,
	}
	if err := s.store.Update(ctx, backend.TableBudgets, budgetID, changes); err != nil {
		return nil, fmt.Errorf("failed to update budget: %w", err)
	}

	return s.Detail(ctx, id, budgetID)
}

// DeleteBudget removes the budget and its expenses.
func (s *Service) DeleteBudget(ctx context.Context, id auth.Identity, budgetID uint) error {
	if _, err := s.ownedBudget(ctx, id, budgetID); err != nil {
		return err
	}

	expenses, err := backend.SelectAll[models.Expense](ctx, s.store, backend.TableExpenses, backend.Query{
		Columns: []string{"id"},
		Where:   map[string]any{"budget_id": budgetID},
	})
	if err != nil {
		return fmt.Errorf("failed to load expenses: %w", err)
	}
	for _, e := range expenses {
		if err := s.store.Delete(ctx, backend.TableExpenses, e.ID); err != nil {
			return fmt.Errorf("failed to delete expense %d: %w", e.ID, err)
		}
	}

	if err := s.store.Delete(ctx, backend.TableBudgets, budgetID); err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	s.log.Info("Budget deleted", zap.Uint("budgetID", budgetID), zap.Int("expenses", len(expenses)))
	return nil
}

func (s *Service) AddExpense(ctx context.Context, id auth.Identity, in ExpenseInput) (*Detail, error) {
	if err := Validate(&in); err != nil {
		return nil, err
	}
	if _, err := s.ownedBudget(ctx, id, in.BudgetID); err != nil {
		return nil, err
	}

	e := &models.Expense{
		BudgetID: in.BudgetID,
		Category: in.Category,
		ItemName: in.ItemName,
		Amount:   in.Amount,
		Note:     in.Note,
	}
	if err := s.store.Insert(ctx, backend.TableExpenses, e); err != nil {
		return nil, fmt.Errorf("failed to add expense: %w", err)
	}

	return s.Detail(ctx, id, in.BudgetID)
}

// DeleteExpense removes an expense of the given budget.
func (s *Service) DeleteExpense(ctx context.Context, id auth.Identity, budgetID, expenseID uint) (*Detail, error) {
	e, err := backend.FindByID[models.Expense](ctx, s.store, backend.TableExpenses, expenseID)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, fmt.Errorf("expense %d: %w", expenseID, ErrNotFound)
		}
		return nil, err
	}
	if e.BudgetID != budgetID {
		return nil, fmt.Errorf("expense %d: %w", expenseID, ErrNotFound)
	}
	if _, err := s.ownedBudget(ctx, id, e.BudgetID); err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, backend.TableExpenses, expenseID); err != nil {
		return nil, fmt.Errorf("failed to delete expense: %w", err)
	}

	return s.Detail(ctx, id, e.BudgetID)
}

func (s *Service) ownedBudget(ctx context.Context, id auth.Identity, budgetID uint) (*models.Budget, error) {
	b, err := backend.FindByID[models.Budget](ctx, s.store, backend.TableBudgets, budgetID)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, fmt.Errorf("budget %d: %w", budgetID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load budget: %w", err)
	}
	if !id.CanManage(b.OwnerID) {
		return nil, ErrForbidden
	}
	return b, nil
}
