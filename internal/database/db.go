package database

import (
	"log"
	"time"

	"crm-backend/internal/config"
	"crm-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	const maxAttempts = 10
	for i := 1; i <= maxAttempts; i++ {
		log.Printf("trying to connect to DB (attempt %d/%d)...", i, maxAttempts)

		DB, err = gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{})
		if err == nil {
			log.Println("connected to DB successfully")
			break
		}

		log.Printf("failed to connect to DB: %v", err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		log.Fatalf("failed to connect to db after %d attempts: %v", maxAttempts, err)
	}

	// миграции
	err = DB.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.AssignmentHistory{},
		&models.Payment{},
		&models.Comment{},
		&models.Task{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	createDefaultAdmin(cfg)
	seedDefaultUsers()
}

// админ только из кода/конфига
func createDefaultAdmin(cfg *config.Config) {
	email := cfg.AdminEmail
	if email == "" {
		email = "admin@crm.local"
	}
	password := cfg.AdminPassword
	if password == "" {
		password = "Admin123!"
	}

	var count int64
	if err := DB.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		log.Printf("failed to check admin user: %v", err)
		return
	}
	if count > 0 {
		// админ уже есть — ничего не делаем
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("failed to hash default admin password: %v", err)
		return
	}

	admin := models.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Иванов Петр Сергеевич",
		Role:         models.RoleAdmin,
	}

	if err := DB.Create(&admin).Error; err != nil {
		log.Printf("failed to create default admin: %v", err)
		return
	}

	log.Printf("created default admin user: %s (password: %s)", email, password)
}

// демо-аккаунты для каждой роли
func seedDefaultUsers() {
	type seedUser struct {
		Email    string
		Password string
		FullName string
		Role     models.Role
	}

	users := []seedUser{
		{
			Email:    "sales@crm.local",
			Password: "password123",
			FullName: "Сидорова Анна Михайловна",
			Role:     models.RoleSalesManager,
		},
		{
			Email:    "spec1@crm.local",
			Password: "password123",
			FullName: "Козлов Дмитрий Андреевич",
			Role:     models.RoleSpecialist,
		},
		{
			Email:    "spec2@crm.local",
			Password: "password123",
			FullName: "Морозова Елена Викторовна",
			Role:     models.RoleSpecialist,
		},
		{
			Email:    "designer@crm.local",
			Password: "password123",
			FullName: "Волков Артем Игоревич",
			Role:     models.RoleDesigner,
		},
	}

	for _, u := range users {
		var count int64
		if err := DB.Model(&models.User{}).
			Where("email = ?", u.Email).
			Count(&count).Error; err != nil {
			log.Printf("failed to check seed user %s: %v", u.Email, err)
			continue
		}
		if count > 0 {
			// уже есть — пропускаем
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("failed to hash password for %s: %v", u.Email, err)
			continue
		}

		user := models.User{
			Email:        u.Email,
			PasswordHash: string(hash),
			FullName:     u.FullName,
			Role:         u.Role,
		}

		if err := DB.Create(&user).Error; err != nil {
			log.Printf("failed to create seed user %s: %v", u.Email, err)
			continue
		}

		log.Printf("created seed user: %s (role=%s, password=%s)", u.Email, u.Role, u.Password)
	}
}
