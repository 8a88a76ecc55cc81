package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleVenueManager Role = "venue_manager"
	RoleSupplier     Role = "supplier"
	RoleEventPlanner Role = "event_planner"
	RoleUser         Role = "user"
)

// Roles lists every known role in display order.
var Roles = []Role{RoleAdmin, RoleVenueManager, RoleSupplier, RoleEventPlanner, RoleUser}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// CanOrganize reports whether a profile with this role may publish events.
func (r Role) CanOrganize() bool {
	return r == RoleVenueManager || r == RoleSupplier || r == RoleEventPlanner
}

type Profile struct {
	gorm.Model
	Email       string `gorm:"not null;unique"`
	Password    string `json:"-" gorm:"not null"`
	FullName    string
	Phone       string
	CompanyName string
	Role        Role `gorm:"not null;default:'user'"`
	ConfirmedAt *time.Time
}

type VenueType struct {
	gorm.Model
	Name string `gorm:"not null;unique"`
}

type Venue struct {
	gorm.Model
	OwnerID       uint   `gorm:"index"`
	Name          string `gorm:"not null"`
	Location      string
	Capacity      *int
	Price         *float64
	Rating        *float64
	CoverImageURL string

	VenueTypes []VenueType  `gorm:"many2many:venue_venue_types"`
	Images     []VenueImage `gorm:"foreignKey:VenueID"`
}

// TypeNames returns the names of the associated venue types.
func (v Venue) TypeNames() []string {
	names := make([]string, 0, len(v.VenueTypes))
	for _, t := range v.VenueTypes {
		names = append(names, t.Name)
	}
	return names
}

type VenueImage struct {
	gorm.Model
	VenueID     uint   `gorm:"not null;index"`
	URL         string `gorm:"not null"`
	StoragePath string
}

type CompanyProfile struct {
	gorm.Model
	SupplierID  uint `gorm:"uniqueIndex"`
	CompanyName string
	Description string
	Website     string
}

type SupplierService struct {
	gorm.Model
	SupplierID  uint   `gorm:"not null;index"`
	ServiceName string `gorm:"not null"`
}

type Supplier struct {
	gorm.Model
	OwnerID       uint   `gorm:"index"`
	Name          string `gorm:"not null"`
	City          string
	Rating        *float64
	CoverImageURL string

	CompanyProfile *CompanyProfile   `gorm:"foreignKey:SupplierID"`
	Services       []SupplierService `gorm:"foreignKey:SupplierID"`
}

// ServicesString flattens service names into "A, B" for searching.
func (s Supplier) ServicesString() string {
	names := make([]string, 0, len(s.Services))
	for _, svc := range s.Services {
		names = append(names, svc.ServiceName)
	}
	return strings.Join(names, ", ")
}

type PlannerSpecialization struct {
	gorm.Model
	EventPlannerID uint   `gorm:"not null;index"`
	Name           string `gorm:"not null"`
}

type EventPlanner struct {
	gorm.Model
	OwnerID         uint   `gorm:"index"`
	CompanyName     string `gorm:"not null"`
	City            string
	Bio             string
	YearsExperience *int

	Specializations []PlannerSpecialization `gorm:"foreignKey:EventPlannerID"`
}

func (p EventPlanner) SpecializationsString() string {
	names := make([]string, 0, len(p.Specializations))
	for _, s := range p.Specializations {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}

type Event struct {
	gorm.Model
	OrganizerID uint   `gorm:"not null;index"`
	Name        string `gorm:"not null"`
	Description string
	Date        time.Time `gorm:"not null"`
	Location    string
	Category    string
	TicketPrice *float64
	Capacity    *int
	Tags        []string `gorm:"serializer:json"`
}

type Budget struct {
	gorm.Model
	EventID     *uint
	OwnerID     uint            `gorm:"not null;index"`
	Name        string
	TotalBudget decimal.Decimal `gorm:"type:numeric(14,2);not null"`
}

type Expense struct {
	gorm.Model
	BudgetID uint            `gorm:"not null;index"`
	Category string          `gorm:"not null"`
	ItemName string          `gorm:"not null"`
	Amount   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Note     string
}

type TicketStatus string

const (
	TicketPending   TicketStatus = "pending"
	TicketApproved  TicketStatus = "approved"
	TicketRejected  TicketStatus = "rejected"
	TicketCancelled TicketStatus = "cancelled"
)

// Final reports whether no further status change is allowed.
func (s TicketStatus) Final() bool {
	return s == TicketCancelled || s == TicketRejected
}

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketPending, TicketApproved, TicketRejected, TicketCancelled:
		return true
	}
	return false
}

type Ticket struct {
	gorm.Model
	EventID       uint         `gorm:"not null;index"`
	UserID        uint         `gorm:"not null;index"`
	Quantity      int          `gorm:"not null"`
	Status        TicketStatus `gorm:"not null;default:'pending'"`
	PaymentID     string
	FailureReason string
	RefundedAt    *time.Time
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Profile{},
		&VenueType{},
		&Venue{},
		&VenueImage{},
		&Supplier{},
		&CompanyProfile{},
		&SupplierService{},
		&EventPlanner{},
		&PlannerSpecialization{},
		&Event{},
		&Budget{},
		&Expense{},
		&Ticket{},
	)
}
