package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var monthRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidMonth проверяет формат календарного месяца платежа (YYYY-MM).
func ValidMonth(month string) bool {
	return monthRe.MatchString(month)
}

// Payment — строка платёжного журнала. После создания не изменяется и не
// удаляется. Уникальность по (клиент, месяц, признак продления) не требуется:
// повторные продления за один месяц допустимы.
type Payment struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Amount    int    `gorm:"not null" json:"amount"`
	Month     string `gorm:"size:7;not null;index" json:"month"`
	IsRenewal bool   `gorm:"not null" json:"isRenewal"`

	ClientID string  `gorm:"type:uuid;not null;index" json:"clientId"`
	Client   *Client `json:"client,omitempty"`

	ManagerID string `gorm:"type:uuid;not null" json:"managerId"`
	Manager   *User  `json:"manager,omitempty"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
