package main

import (
	"log"

	"stagewise/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

var seedCfg Config // kept so seedDB can run standalone after initDB

func initDB(cfg Config) {
	var err error
	db, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	seedCfg = cfg

	if cfg.AutoMigrate {
		// Migrate models individually so a failure on one doesn't block others
		if err := db.AutoMigrate(&models.User{}); err != nil {
			log.Printf("migration warning (users): %v", err)
		}
		if err := db.AutoMigrate(&models.Operator{}); err != nil {
			log.Printf("migration warning (operators): %v", err)
		}
		if err := db.AutoMigrate(&models.RefreshToken{}); err != nil {
			log.Printf("migration warning (refresh_tokens): %v", err)
		}
		if err := db.AutoMigrate(&models.Transformation{}); err != nil {
			log.Printf("migration warning (transformations): %v", err)
		}
		if err := db.AutoMigrate(&models.Lead{}); err != nil {
			log.Printf("migration warning (leads): %v", err)
		}
	}
	seedDB()
}

// seedDB ensures a seed operator account exists: a user with credentials and
// a matching row in the operators registry. Without the registry row the
// account would authenticate but never pass the dashboard gate.
func seedDB() {
	email := seedCfg.SeedOperatorEmail
	if email == "" {
		return
	}
	var count int64
	db.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count == 0 {
		hashed, _ := bcrypt.GenerateFromPassword([]byte(seedCfg.SeedOperatorPassword), bcrypt.DefaultCost)
		user := models.User{Email: email, HashedPassword: hashed}
		if err := db.Create(&user).Error; err != nil {
			log.Printf("failed to seed operator account: %v", err)
			return
		}
		log.Printf("Seeded operator account: email=%s", email)
	}
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		log.Printf("failed to find seeded operator account: %v", err)
		return
	}
	var opCount int64
	db.Model(&models.Operator{}).Where("user_id = ?", user.ID).Count(&opCount)
	if opCount == 0 {
		op := models.Operator{UserID: user.ID, Note: "seeded operator"}
		if err := db.Create(&op).Error; err != nil {
			log.Printf("failed to seed operator registry row: %v", err)
			return
		}
		log.Println("Seeded operator registry row for user id:", user.ID)
	}
}
