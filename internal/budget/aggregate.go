package budget

import (
	"github.com/JonasLeetTheWay/eventisense/internal/chart"
	"github.com/JonasLeetTheWay/eventisense/internal/models"
	"github.com/shopspring/decimal"
)

// SuggestedCategories are offered when adding an expense. Any other
// free-text category is accepted as well.
var SuggestedCategories = []string{
	"Venue",
	"Catering",
	"Decoration",
	"Entertainment",
	"Photography",
	"Transportation",
	"Marketing",
	"Staff",
	"Equipment",
	"Miscellaneous",
}

type WithExpenses struct {
	Budget   models.Budget
	Expenses []models.Expense
}

type Totals struct {
	TotalBudgets   int             `json:"totalBudgets"`
	TotalAllocated decimal.Decimal `json:"totalAllocated"`
	TotalSpent     decimal.Decimal `json:"totalSpent"`
}

type Summary struct {
	Budget     models.Budget   `json:"budget"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	OverBudget bool            `json:"overBudget"`
}

type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Spent sums expense amounts. Rows with a non-positive amount are invalid
// and are left out, so the sum is never negative.
func Spent(expenses []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if e.Amount.IsPositive() {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// Summarize computes spent and remaining for one budget. Remaining goes
// negative when the budget is exceeded.
func Summarize(b models.Budget, expenses []models.Expense) Summary {
	spent := Spent(expenses)
	remaining := b.TotalBudget.Sub(spent)
	return Summary{
		Budget:     b,
		Spent:      spent,
		Remaining:  remaining,
		OverBudget: remaining.IsNegative(),
	}
}

func ComputeTotals(budgets []WithExpenses) Totals {
	totals := Totals{
		TotalBudgets:   len(budgets),
		TotalAllocated: decimal.Zero,
		TotalSpent:     decimal.Zero,
	}
	for _, b := range budgets {
		totals.TotalAllocated = totals.TotalAllocated.Add(b.Budget.TotalBudget)
		totals.TotalSpent = totals.TotalSpent.Add(Spent(b.Expenses))
	}
	return totals
}

// ByCategory groups expenses by their exact category string, in the order
// categories first appear.
func ByCategory(expenses []models.Expense) []CategoryAmount {
	index := make(map[string]int)
	var groups []CategoryAmount
	for _, e := range expenses {
		if !e.Amount.IsPositive() {
			continue
		}
		i, ok := index[e.Category]
		if !ok {
			i = len(groups)
			index[e.Category] = i
			groups = append(groups, CategoryAmount{Category: e.Category, Amount: decimal.Zero})
		}
		groups[i].Amount = groups[i].Amount.Add(e.Amount)
	}
	return groups
}

// Breakdown adapts ByCategory for a chart renderer.
func Breakdown(expenses []models.Expense) chart.Data {
	groups := ByCategory(expenses)
	labels := make([]string, len(groups))
	values := make([]float64, len(groups))
	for i, g := range groups {
		labels[i] = g.Category
		values[i] = g.Amount.InexactFloat64()
	}
	return chart.New(labels, values)
}
