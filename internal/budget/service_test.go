package budget

import (
	"context"
	"errors"
	"testing"

	"github.com/JonasLeetTheWay/eventisense/internal/auth"
	"github.com/JonasLeetTheWay/eventisense/internal/backend"
	"github.com/JonasLeetTheWay/eventisense/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// failingStore fails selects on one table and delegates everything else.
type failingStore struct {
	backend.Store
	table string
}

func (f *failingStore) Select(ctx context.Context, table string, q backend.Query, dest any) error {
	if table == f.table {
		return errors.New("connection reset")
	}
	return f.Store.Select(ctx, table, q, dest)
}

func setupService(t *testing.T) (*Service, backend.Store) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	store := backend.NewGormStore(db)
	return NewService(store, zap.NewNop()), store
}

var (
	owner    = auth.Identity{UserID: 1, Role: models.RoleEventPlanner}
	stranger = auth.Identity{UserID: 2, Role: models.RoleUser}
	admin    = auth.Identity{UserID: 3, Role: models.RoleAdmin}
)

func TestService_BudgetLifecycle(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateBudget(ctx, owner, BudgetInput{Name: "Gala", TotalBudget: d(10000)})
	require.NoError(t, err)
	budgetID := created.Summary.Budget.ID
	assert.True(t, created.Summary.Remaining.Equal(d(10000)))

	_, err = svc.AddExpense(ctx, owner, ExpenseInput{BudgetID: budgetID, Category: "Venue", ItemName: "Hall", Amount: d(2000)})
	require.NoError(t, err)
	detail, err := svc.AddExpense(ctx, owner, ExpenseInput{BudgetID: budgetID, Category: "Food", ItemName: "Buffet", Amount: d(3000)})
	require.NoError(t, err)

	assert.True(t, detail.Summary.Spent.Equal(d(5000)))
	assert.True(t, detail.Summary.Remaining.Equal(d(5000)))
	assert.Len(t, detail.Expenses, 2)
	assert.Len(t, detail.Chart.Labels, 2)

	updated, err := svc.UpdateBudget(ctx, owner, budgetID, BudgetInput{Name: "Gala", TotalBudget: d(4000)})
	require.NoError(t, err)
	assert.True(t, updated.Summary.Remaining.Equal(d(-1000)))
	assert.True(t, updated.Summary.OverBudget)

	after, err := svc.DeleteExpense(ctx, owner, budgetID+1, detail.Expenses[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)

	after, err = svc.DeleteExpense(ctx, owner, budgetID, detail.Expenses[0].ID)
	require.NoError(t, err)
	assert.Len(t, after.Expenses, 1)

	overview, err := svc.Overview(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, overview.Totals.TotalBudgets)
	assert.True(t, overview.Totals.TotalAllocated.Equal(d(4000)))

	require.NoError(t, svc.DeleteBudget(ctx, owner, budgetID))
	_, err = svc.Detail(ctx, owner, budgetID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_OverviewEmpty(t *testing.T) {
	svc, _ := setupService(t)

	overview, err := svc.Overview(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 0, overview.Totals.TotalBudgets)
	assert.True(t, overview.Totals.TotalSpent.IsZero())
	assert.Empty(t, overview.Budgets)
}

func TestService_OwnershipEnforced(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateBudget(ctx, owner, BudgetInput{TotalBudget: d(100)})
	require.NoError(t, err)
	budgetID := created.Summary.Budget.ID

	_, err = svc.Detail(ctx, stranger, budgetID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.AddExpense(ctx, stranger, ExpenseInput{BudgetID: budgetID, Category: "A", ItemName: "B", Amount: d(1)})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Detail(ctx, admin, budgetID)
	assert.NoError(t, err)
}

func TestService_ValidationHappensBeforeStore(t *testing.T) {
	svc := NewService(&failingStore{table: backend.TableBudgets}, nil)

	_, err := svc.AddExpense(context.Background(), owner, ExpenseInput{BudgetID: 1, Category: "A", ItemName: "B", Amount: decimal.Zero})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestService_DetailFailsWhenExpensesUnavailable(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateBudget(ctx, owner, BudgetInput{TotalBudget: d(1000)})
	require.NoError(t, err)

	broken := NewService(&failingStore{Store: store, table: backend.TableExpenses}, nil)
	detail, err := broken.Detail(ctx, owner, created.Summary.Budget.ID)

	require.Error(t, err)
	assert.Nil(t, detail)
	assert.Contains(t, err.Error(), "failed to load expenses")
}
