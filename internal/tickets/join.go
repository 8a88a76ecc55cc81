// Package tickets joins tickets with their events and the people on both
// sides of a purchase, and runs the purchase flow.
package tickets

import (
	"github.com/JonasLeetTheWay/eventisense/internal/models"
	"github.com/shopspring/decimal"
)

// Party is the public part of a profile.
type Party struct {
	ID          uint        `json:"id"`
	Email       string      `json:"email"`
	FullName    string      `json:"fullName"`
	CompanyName string      `json:"companyName,omitempty"`
	Role        models.Role `json:"role"`
}

func partyOf(p models.Profile) *Party {
	return &Party{
		ID:          p.ID,
		Email:       p.Email,
		FullName:    p.FullName,
		CompanyName: p.CompanyName,
		Role:        p.Role,
	}
}

// View is a ticket with its references resolved. A reference whose record
// was not found stays nil.
type View struct {
	Ticket    models.Ticket   `json:"ticket"`
	Event     *models.Event   `json:"event,omitempty"`
	Buyer     *Party          `json:"buyer,omitempty"`
	Organizer *Party          `json:"organizer,omitempty"`
	Total     decimal.Decimal `json:"total"`
}

// Join resolves every ticket against id-keyed lookups built once from the
// event and profile collections. The organizer may hold any organizing role.
func Join(tickets []models.Ticket, events []models.Event, profiles []models.Profile) []View {
	eventsByID := make(map[uint]*models.Event, len(events))
	for i := range events {
		eventsByID[events[i].ID] = &events[i]
	}
	profilesByID := make(map[uint]*Party, len(profiles))
	for _, p := range profiles {
		profilesByID[p.ID] = partyOf(p)
	}

	out := make([]View, 0, len(tickets))
	for _, t := range tickets {
		v := View{Ticket: t, Buyer: profilesByID[t.UserID], Total: decimal.Zero}
		if e, ok := eventsByID[t.EventID]; ok {
			v.Event = e
			v.Organizer = profilesByID[e.OrganizerID]
			v.Total = Total(e, t.Quantity)
		}
		out = append(out, v)
	}
	return out
}

// Total is the price of quantity tickets. Free or unpriced events cost zero.
func Total(e *models.Event, quantity int) decimal.Decimal {
	if e == nil || e.TicketPrice == nil || *e.TicketPrice <= 0 || quantity <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*e.TicketPrice).Mul(decimal.NewFromInt(int64(quantity)))
}
