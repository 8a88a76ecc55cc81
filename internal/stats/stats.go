package stats

import (
	"fmt"
	"math"

	"github.com/JonasLeetTheWay/eventisense/internal/chart"
	"github.com/JonasLeetTheWay/eventisense/internal/models"
)

type Bucket struct {
	Role       models.Role `json:"role"`
	Count      int         `json:"count"`
	Percentage float64     `json:"percentage"`
}

// Label renders the percentage with one decimal, e.g. "12.5%".
func (b Bucket) Label() string {
	return fmt.Sprintf("%.1f%%", b.Percentage)
}

type Distribution struct {
	TotalUsers int      `json:"totalUsers"`
	Buckets    []Bucket `json:"roles"`
}

// Roles counts profiles per role. Every known role gets a bucket, followed by
// unknown role strings in the order they were first seen.
func Roles(profiles []models.Profile) Distribution {
	counts := make(map[models.Role]int, len(models.Roles))
	order := append([]models.Role{}, models.Roles...)
	for _, p := range profiles {
		if _, seen := counts[p.Role]; !seen && !p.Role.Valid() {
			order = append(order, p.Role)
		}
		counts[p.Role]++
	}

	total := len(profiles)
	buckets := make([]Bucket, 0, len(order))
	for _, role := range order {
		buckets = append(buckets, Bucket{
			Role:       role,
			Count:      counts[role],
			Percentage: percentage(counts[role], total),
		})
	}
	return Distribution{TotalUsers: total, Buckets: buckets}
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}

// Count returns the number of profiles holding role.
func (d Distribution) Count(role models.Role) int {
	for _, b := range d.Buckets {
		if b.Role == role {
			return b.Count
		}
	}
	return 0
}

// Chart adapts the distribution for a pie chart.
func (d Distribution) Chart() chart.Data {
	labels := make([]string, 0, len(d.Buckets))
	values := make([]float64, 0, len(d.Buckets))
	for _, b := range d.Buckets {
		labels = append(labels, string(b.Role))
		values = append(values, float64(b.Count))
	}
	return chart.New(labels, values)
}
