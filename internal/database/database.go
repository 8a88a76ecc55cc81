package database

import (
	"fmt"
	"time"

	"github.com/JonasLeetTheWay/eventisense/internal/auth"
	"github.com/JonasLeetTheWay/eventisense/internal/config"
	"github.com/JonasLeetTheWay/eventisense/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func DSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
}

func Connect(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := models.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("Database connected and migrated successfully",
		zap.String("host", cfg.DBHost),
		zap.String("database", cfg.DBName),
	)
	return db, nil
}

const seedPassword = "password123"

// SeedData fills an empty database with sample accounts and listings.
func SeedData(db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.Model(&models.Profile{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count profiles: %w", err)
	}
	if count > 0 {
		log.Info("Data already seeded, skipping")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		profiles, err := seedProfiles(tx)
		if err != nil {
			return err
		}
		if err := seedVenues(tx, profiles[models.RoleVenueManager]); err != nil {
			return err
		}
		if err := seedSuppliers(tx, profiles[models.RoleSupplier]); err != nil {
			return err
		}
		if err := seedPlanners(tx, profiles[models.RoleEventPlanner]); err != nil {
			return err
		}
		if err := seedEventsAndBudgets(tx, profiles[models.RoleEventPlanner]); err != nil {
			return err
		}
		log.Info("Sample data seeded successfully")
		return nil
	})
}

func seedProfiles(tx *gorm.DB) (map[models.Role]uint, error) {
	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		return nil, err
	}
	now := time.Now()

	profiles := []models.Profile{
		{Email: "admin@eventisense.id", FullName: "Admin", Role: models.RoleAdmin},
		{Email: "venues@eventisense.id", FullName: "Rina Wijaya", CompanyName: "Wijaya Venues", Role: models.RoleVenueManager},
		{Email: "supplier@eventisense.id", FullName: "Budi Santoso", CompanyName: "Santoso Catering", Role: models.RoleSupplier},
		{Email: "planner@eventisense.id", FullName: "Dewi Lestari", CompanyName: "Lestari Events", Role: models.RoleEventPlanner},
		{Email: "guest@eventisense.id", FullName: "Andi Pratama", Role: models.RoleUser},
	}

	ids := make(map[models.Role]uint, len(profiles))
	for i := range profiles {
		profiles[i].Password = hash
		profiles[i].ConfirmedAt = &now
		if err := tx.Create(&profiles[i]).Error; err != nil {
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
		ids[profiles[i].Role] = profiles[i].ID
	}
	return ids, nil
}

func seedVenues(tx *gorm.DB, ownerID uint) error {
	types := map[string]*models.VenueType{}
	for _, name := range []string{"Ballroom", "Outdoor", "Conference Hall", "Rooftop"} {
		t := &models.VenueType{Name: name}
		if err := tx.Create(t).Error; err != nil {
			return fmt.Errorf("failed to create venue type: %w", err)
		}
		types[name] = t
	}

	venues := []models.Venue{
		{Name: "Grand Ballroom Mulia", Location: "Jakarta", Capacity: intPtr(1200), Price: floatPtr(85000000), Rating: floatPtr(4.8),
			VenueTypes: []models.VenueType{*types["Ballroom"]}},
		{Name: "Taman Bunga Garden", Location: "Bandung", Capacity: intPtr(300), Price: floatPtr(15000000), Rating: floatPtr(4.5),
			VenueTypes: []models.VenueType{*types["Outdoor"]}},
		{Name: "Skyline Terrace", Location: "Jakarta", Capacity: intPtr(150), Price: floatPtr(25000000), Rating: floatPtr(4.6),
			VenueTypes: []models.VenueType{*types["Rooftop"], *types["Outdoor"]}},
		{Name: "Bali Convention Center", Location: "Bali", Capacity: intPtr(3000), Rating: floatPtr(4.7),
			VenueTypes: []models.VenueType{*types["Conference Hall"]}},
	}
	for i := range venues {
		venues[i].OwnerID = ownerID
		if err := tx.Create(&venues[i]).Error; err != nil {
			return fmt.Errorf("failed to create venue: %w", err)
		}
	}
	return nil
}

func seedSuppliers(tx *gorm.DB, ownerID uint) error {
	suppliers := []models.Supplier{
		{Name: "Santoso Catering", City: "Jakarta", Rating: floatPtr(4.7),
			CompanyProfile: &models.CompanyProfile{CompanyName: "PT Santoso Boga", Description: "Indonesian and western buffets"},
			Services:       []models.SupplierService{{ServiceName: "Catering"}, {ServiceName: "Dessert Table"}}},
		{Name: "Kembang Decor", City: "Surabaya", Rating: floatPtr(4.3),
			CompanyProfile: &models.CompanyProfile{CompanyName: "Kembang Dekorasi"},
			Services:       []models.SupplierService{{ServiceName: "Floral Decoration"}, {ServiceName: "Lighting"}}},
		{Name: "Suara Sound System", City: "Bandung",
			Services: []models.SupplierService{{ServiceName: "Sound System"}}},
	}
	for i := range suppliers {
		suppliers[i].OwnerID = ownerID
		if err := tx.Create(&suppliers[i]).Error; err != nil {
			return fmt.Errorf("failed to create supplier: %w", err)
		}
	}
	return nil
}

func seedPlanners(tx *gorm.DB, ownerID uint) error {
	planners := []models.EventPlanner{
		{CompanyName: "Lestari Events", City: "Jakarta", Bio: "Weddings and corporate galas", YearsExperience: intPtr(8),
			Specializations: []models.PlannerSpecialization{{Name: "Wedding"}, {Name: "Corporate"}}},
		{CompanyName: "Nusantara Festival Co", City: "Yogyakarta", YearsExperience: intPtr(3),
			Specializations: []models.PlannerSpecialization{{Name: "Music Festival"}}},
	}
	for i := range planners {
		planners[i].OwnerID = ownerID
		if err := tx.Create(&planners[i]).Error; err != nil {
			return fmt.Errorf("failed to create event planner: %w", err)
		}
	}
	return nil
}

func seedEventsAndBudgets(tx *gorm.DB, organizerID uint) error {
	events := []models.Event{
		{Name: "Jakarta Jazz Night", Description: "An evening of local jazz", Date: parseDate("2026-12-12T19:00:00Z"),
			Location: "Jakarta", Category: "Music", TicketPrice: floatPtr(350000), Capacity: intPtr(500), Tags: []string{"jazz", "live"}},
		{Name: "Startup Summit", Description: "Founders and investors meetup", Date: parseDate("2027-02-03T09:00:00Z"),
			Location: "Bandung", Category: "Business", TicketPrice: floatPtr(150000), Capacity: intPtr(800), Tags: []string{"tech"}},
		{Name: "Community Yoga", Date: parseDate("2026-11-20T07:00:00Z"), Location: "Bali", Category: "Wellness"},
	}
	for i := range events {
		events[i].OrganizerID = organizerID
		if err := tx.Create(&events[i]).Error; err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}
	}

	budget := models.Budget{
		EventID:     &events[0].ID,
		OwnerID:     organizerID,
		Name:        "Jazz Night production",
		TotalBudget: decimal.NewFromInt(120000000),
	}
	if err := tx.Create(&budget).Error; err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}

	expenses := []models.Expense{
		{Category: "Venue", ItemName: "Hall rental", Amount: decimal.NewFromInt(45000000)},
		{Category: "Entertainment", ItemName: "Band fee", Amount: decimal.NewFromInt(30000000)},
		{Category: "Marketing", ItemName: "Social ads", Amount: decimal.NewFromInt(7500000)},
	}
	for i := range expenses {
		expenses[i].BudgetID = budget.ID
		if err := tx.Create(&expenses[i]).Error; err != nil {
			return fmt.Errorf("failed to create expense: %w", err)
		}
	}
	return nil
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func parseDate(dateStr string) time.Time {
	t, _ := time.Parse(time.RFC3339, dateStr)
	return t
}
