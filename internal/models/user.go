package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleSalesManager Role = "SALES_MANAGER"
	RoleSpecialist   Role = "SPECIALIST"
	RoleDesigner     Role = "DESIGNER"
)

// NormalizeRole приводит входное значение роли к каноническому виду.
// PROJECT_MANAGER — старое имя административной роли, считаем его ADMIN.
func NormalizeRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleSalesManager, RoleSpecialist, RoleDesigner:
		return Role(s), true
	case "PROJECT_MANAGER":
		return RoleAdmin, true
	default:
		return "", false
	}
}

type User struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`

	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	FullName     string `gorm:"size:255;not null" json:"fullName"`
	Role         Role   `gorm:"type:varchar(20);not null" json:"role"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
