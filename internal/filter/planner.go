package filter

import "github.com/JonasLeetTheWay/eventisense/internal/models"

type PlannerCriteria struct {
	SearchQuery    string
	Location       string
	Specialization string
	MinExperience  int // years; 0 means no minimum
}

func Planners(planners []models.EventPlanner, c PlannerCriteria) []models.EventPlanner {
	query := normalize(c.SearchQuery)
	location := normalize(c.Location)
	specialization := normalize(c.Specialization)

	out := make([]models.EventPlanner, 0, len(planners))
	for _, p := range planners {
		if query != "" && !matchesSearch(query, p.CompanyName, p.City, p.SpecializationsString(), p.Bio) {
			continue
		}
		if location != "" && normalize(p.City) != location {
			continue
		}
		if specialization != "" && !specializesIn(p, specialization) {
			continue
		}
		if c.MinExperience != 0 && years(p) < c.MinExperience {
			continue
		}
		out = append(out, p)
	}
	return out
}

func specializesIn(p models.EventPlanner, criterion string) bool {
	for _, s := range p.Specializations {
		if overlaps(s.Name, criterion) {
			return true
		}
	}
	return false
}

func years(p models.EventPlanner) int {
	if p.YearsExperience == nil {
		return 0
	}
	return *p.YearsExperience
}
