package filter

import (
	"math"
	"strings"
	"time"

	"github.com/JonasLeetTheWay/eventisense/internal/models"
)

type EventCriteria struct {
	SearchQuery string
	Category    string
	MinPrice    float64 // 0 means unset
	MaxPrice    float64 // 0 means unset
	StartDate   time.Time
	EndDate     time.Time
}

func Events(events []models.Event, c EventCriteria) []models.Event {
	query := normalize(c.SearchQuery)
	category := normalize(c.Category)

	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		if query != "" && !matchesSearch(query, e.Name, e.Location, strings.Join(e.Tags, " "), e.Description) {
			continue
		}
		if category != "" && normalize(e.Category) != category {
			continue
		}
		if !withinPrice(e.TicketPrice, c.MinPrice, c.MaxPrice) {
			continue
		}
		if !c.StartDate.IsZero() && e.Date.Before(c.StartDate) {
			continue
		}
		if !c.EndDate.IsZero() && e.Date.After(c.EndDate) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func withinPrice(price *float64, minPrice, maxPrice float64) bool {
	if minPrice == 0 && maxPrice == 0 {
		return true
	}
	if price == nil || math.IsNaN(*price) {
		return false
	}
	if minPrice != 0 && *price < minPrice {
		return false
	}
	if maxPrice != 0 && *price > maxPrice {
		return false
	}
	return true
}
