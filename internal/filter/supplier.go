package filter

import "github.com/JonasLeetTheWay/eventisense/internal/models"

type SupplierCriteria struct {
	SearchQuery string
	Location    string
	ServiceType string
	MinRating   float64 // 0 means no minimum
}

func Suppliers(suppliers []models.Supplier, c SupplierCriteria) []models.Supplier {
	query := normalize(c.SearchQuery)
	location := normalize(c.Location)
	service := normalize(c.ServiceType)

	out := make([]models.Supplier, 0, len(suppliers))
	for _, s := range suppliers {
		if query != "" && !matchesSearch(query, s.Name, s.City, s.ServicesString(), companyName(s)) {
			continue
		}
		if location != "" && normalize(s.City) != location {
			continue
		}
		if service != "" && !offersService(s, service) {
			continue
		}
		if c.MinRating != 0 && valueOrZero(s.Rating) < c.MinRating {
			continue
		}
		out = append(out, s)
	}
	return out
}

func companyName(s models.Supplier) string {
	if s.CompanyProfile == nil {
		return ""
	}
	return s.CompanyProfile.CompanyName
}

func offersService(s models.Supplier, criterion string) bool {
	for _, svc := range s.Services {
		if overlaps(svc.ServiceName, criterion) {
			return true
		}
	}
	return false
}
