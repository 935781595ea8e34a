package config

import (
	"log"

	"liblend/internal/adapters/persistence/models"
	"liblend/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	if AppConfig.IsDev() {
		if err := s.seedSampleCatalogue(); err != nil {
			log.Printf("⚠️ Sample catalogue seeder skipped: %v", err)
		}
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	// Check if admin already exists
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", "ADMIN").Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: "admin",
		Email:    "admin@liblend.local",
		Password: hashedPassword,
		Role:     "ADMIN",
		IsActive: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}

// seedSampleCatalogue seeds a few books and members for development
func (s *Seeder) seedSampleCatalogue() error {
	var count int64
	s.db.Model(&models.Book{}).Count(&count)
	if count > 0 {
		return nil // Catalogue already seeded
	}

	books := []models.Book{
		{Code: "B-0001", Title: "The Go Programming Language", Author: "Donovan & Kernighan", Stock: 3},
		{Code: "B-0002", Title: "Designing Data-Intensive Applications", Author: "Martin Kleppmann", Stock: 2},
		{Code: "B-0003", Title: "Clean Architecture", Author: "Robert C. Martin", Stock: 1},
	}
	if err := s.db.Create(&books).Error; err != nil {
		return err
	}

	members := []models.Member{
		{Code: "M-0001", Name: "Alice Johnson"},
		{Code: "M-0002", Name: "Bob Smith"},
	}
	if err := s.db.Create(&members).Error; err != nil {
		return err
	}

	log.Printf("✅ Sample catalogue seeded: %d books, %d members", len(books), len(members))
	return nil
}
