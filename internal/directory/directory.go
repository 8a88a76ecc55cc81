package directory

import (
	"context"

	"github.com/JonasLeetTheWay/eventisense/internal/backend"
	"github.com/JonasLeetTheWay/eventisense/internal/filter"
	"github.com/JonasLeetTheWay/eventisense/internal/models"
)

type (
	Venues    = View[models.Venue, filter.VenueCriteria]
	Suppliers = View[models.Supplier, filter.SupplierCriteria]
	Planners  = View[models.EventPlanner, filter.PlannerCriteria]
	Events    = View[models.Event, filter.EventCriteria]
)

func fetchAll[T any](store backend.Store, table, order string, preload ...string) Fetcher[T] {
	return func(ctx context.Context) ([]T, error) {
		return backend.SelectAll[T](ctx, store, table, backend.Query{
			OrderBy: order,
			Preload: preload,
		})
	}
}

// NewVenues lists venues with their venue types. order is passed to the
// store unchanged, e.g. "id desc".
func NewVenues(store backend.Store, order string) *Venues {
	return New(fetchAll[models.Venue](store, backend.TableVenues, order, "VenueTypes"), filter.Venues)
}

func NewSuppliers(store backend.Store, order string) *Suppliers {
	return New(fetchAll[models.Supplier](store, backend.TableSuppliers, order, "CompanyProfile", "Services"), filter.Suppliers)
}

func NewPlanners(store backend.Store, order string) *Planners {
	return New(fetchAll[models.EventPlanner](store, backend.TableEventPlanners, order, "Specializations"), filter.Planners)
}

func NewEvents(store backend.Store, order string) *Events {
	return New(fetchAll[models.Event](store, backend.TableEvents, order), filter.Events)
}
