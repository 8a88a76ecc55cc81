package filter

import (
	"strings"

	"github.com/JonasLeetTheWay/eventisense/internal/models"
)

type VenueCriteria struct {
	SearchQuery string
	Price       string // range token
	Capacity    string // range token
	VenueType   string
}

func Venues(venues []models.Venue, c VenueCriteria) []models.Venue {
	query := normalize(c.SearchQuery)
	price, hasPrice := ParseRange(c.Price)
	capacity, hasCapacity := ParseRange(c.Capacity)
	venueType := normalize(c.VenueType)

	out := make([]models.Venue, 0, len(venues))
	for _, v := range venues {
		if query != "" {
			fields := append([]string{v.Name, v.Location, formatInt(v.Capacity), formatFloat(v.Price)}, v.TypeNames()...)
			if !matchesSearch(query, fields...) {
				continue
			}
		}
		if hasPrice && !price.Contains(v.Price) {
			continue
		}
		if hasCapacity && !capacity.Contains(intAsFloat(v.Capacity)) {
			continue
		}
		if venueType != "" && !hasVenueType(v, venueType) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func hasVenueType(v models.Venue, want string) bool {
	for _, name := range v.TypeNames() {
		if strings.ToLower(strings.TrimSpace(name)) == want {
			return true
		}
	}
	return false
}
