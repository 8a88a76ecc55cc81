package budget

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type BudgetInput struct {
	Name        string          `json:"name"`
	EventID     *uint           `json:"eventId"`
	TotalBudget decimal.Decimal `json:"totalBudget" validate:"gte=0"`
}

type ExpenseInput struct {
	BudgetID uint            `json:"budgetId" validate:"required"`
	Category string          `json:"category" validate:"required"`
	ItemName string          `json:"itemName" validate:"required"`
	Amount   decimal.Decimal `json:"amount" validate:"gt=0"`
	Note     string          `json:"note"`
}

// ValidationError lists the offending fields and the rule each one broke.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %s", name, e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

func normalizeInput(in any) {
	switch v := in.(type) {
	case *ExpenseInput:
		v.Category = strings.TrimSpace(v.Category)
		v.ItemName = strings.TrimSpace(v.ItemName)
		v.Note = strings.TrimSpace(v.Note)
	case *BudgetInput:
		v.Name = strings.TrimSpace(v.Name)
	}
}

// Validate trims text fields and checks the input. It returns a
// *ValidationError when a rule fails.
func Validate(in any) error {
	normalizeInput(in)
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = describe(fe)
	}
	return &ValidationError{Fields: fields}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}
