package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Действия журнала аудита.
const (
	ActionClientCreated          = "CLIENT_CREATED"
	ActionClientArchived         = "CLIENT_ARCHIVED"
	ActionStatusChanged          = "STATUS_CHANGED"
	ActionSpecialistAssigned     = "SPECIALIST_ASSIGNED"
	ActionSpecialistReassigned   = "SPECIALIST_REASSIGNED"
	ActionDesignerAssigned       = "DESIGNER_ASSIGNED"
	ActionDesignerReassigned     = "DESIGNER_REASSIGNED"
	ActionAssignmentAcknowledged = "ASSIGNMENT_ACKNOWLEDGED"
	ActionDesignerAcknowledged   = "DESIGNER_ACKNOWLEDGED"
	ActionRoleChanged            = "ROLE_CHANGED"
)

// AuditLog — журнал действий. Записи только добавляются и никогда не меняются.
type AuditLog struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Action string `gorm:"size:50;not null" json:"action"`

	UserID string `gorm:"type:uuid;not null" json:"userId"`
	User   *User  `json:"user,omitempty"`

	ClientID *string `gorm:"type:uuid;index" json:"clientId"`

	Details string `gorm:"type:text" json:"details"`
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
