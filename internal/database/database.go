package database

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"optivus-service/internal/models"
)

var DB *gorm.DB

func Connect() {
	var err error
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
	)

	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	log.Println("Database connection established")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.Account{},
		&models.ReferralEdge{},
		&models.LedgerEntry{},
		&models.ArchivedLedgerEntry{},
		&models.WithdrawalRequest{},
		&models.KycSubmission{},
		&models.PaymentEvent{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}
	log.Println("Database migration completed")
}

// Seed ensures the treasury account and the bootstrap admin exist. Safe to
// run repeatedly.
func Seed() {
	if err := SeedDB(DB); err != nil {
		log.Fatal("Failed to seed database: ", err)
	}
}

func SeedDB(db *gorm.DB) error {
	var treasury models.Account
	if err := db.Where("role = ?", models.RoleTreasury).First(&treasury).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
		code := "OPTIVUS"
		treasury = models.Account{
			FirstName:    "Protocol",
			LastName:     "Treasury",
			Username:     "treasury",
			Email:        "treasury@optivus.io",
			Role:         models.RoleTreasury,
			Status:       models.StatusActive,
			Activated:    true,
			ReferralCode: &code,
			KycStatus:    models.KycVerified,
		}
		if err := db.Create(&treasury).Error; err != nil {
			return err
		}
		log.Println("Seeded treasury account")
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		return nil
	}

	var admin models.Account
	if err := db.Where("email = ?", adminEmail).First(&admin).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(os.Getenv("ADMIN_PASSWORD")), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin = models.Account{
			FirstName:    "Platform",
			LastName:     "Admin",
			Username:     "admin",
			Email:        adminEmail,
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
			Status:       models.StatusActive,
			Activated:    true,
			KycStatus:    models.KycVerified,
		}
		if err := db.Create(&admin).Error; err != nil {
			return err
		}
		log.Println("Seeded admin account")
	}
	return nil
}
