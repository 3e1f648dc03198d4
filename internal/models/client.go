package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClientStatus string

const (
	StatusNew       ClientStatus = "NEW"
	StatusAssigned  ClientStatus = "ASSIGNED"
	StatusInWork    ClientStatus = "IN_WORK"
	StatusPostponed ClientStatus = "POSTPONED"
	StatusCompleted ClientStatus = "COMPLETED"
	StatusRejected  ClientStatus = "REJECTED"
)

// Набор допустимых статусов. Переходы между статусами не ограничиваются —
// любой статус из набора принимается как есть, важна только роль.
var allowedStatuses = map[ClientStatus]struct{}{
	StatusNew:       {},
	StatusAssigned:  {},
	StatusInWork:    {},
	StatusPostponed: {},
	StatusCompleted: {},
	StatusRejected:  {},
}

// SetAllowedStatuses заменяет набор статусов (CLIENT_STATUSES из конфига).
func SetAllowedStatuses(statuses []string) {
	if len(statuses) == 0 {
		return
	}
	set := make(map[ClientStatus]struct{}, len(statuses))
	for _, s := range statuses {
		s = strings.TrimSpace(s)
		if s != "" {
			set[ClientStatus(s)] = struct{}{}
		}
	}
	if len(set) > 0 {
		allowedStatuses = set
	}
}

func ValidStatus(s ClientStatus) bool {
	_, ok := allowedStatuses[s]
	return ok
}

type Client struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`

	FullName    string       `gorm:"size:255" json:"fullName"`
	CompanyName string       `gorm:"size:255" json:"companyName"`
	Phone       string       `gorm:"size:50;not null" json:"phone"`
	Email       string       `gorm:"size:255" json:"email"`
	Source      string       `gorm:"size:100" json:"source"`
	Notes       string       `gorm:"type:text" json:"notes"`
	GroupName   string       `gorm:"size:100" json:"groupName"`
	Services    []string     `gorm:"serializer:json;type:jsonb" json:"services"`
	Status      ClientStatus `gorm:"type:varchar(20);not null" json:"status"`
	Archived    bool         `gorm:"not null" json:"archived"`

	CreatedByID string `gorm:"type:uuid;not null" json:"createdById"`
	CreatedBy   *User  `json:"createdBy,omitempty"`

	AssignedToID   *string    `gorm:"type:uuid;index" json:"assignedToId"`
	AssignedTo     *User      `json:"assignedTo,omitempty"`
	AssignedAt     *time.Time `json:"assignedAt"`
	AssignmentSeen bool       `gorm:"not null" json:"assignmentSeen"`

	DesignerID             *string    `gorm:"type:uuid;index" json:"designerId"`
	Designer               *User      `json:"designer,omitempty"`
	DesignerAssignedAt     *time.Time `json:"designerAssignedAt"`
	DesignerAssignmentSeen bool       `gorm:"not null" json:"designerAssignmentSeen"`

	AssignmentHistory []AssignmentHistory `json:"assignmentHistory,omitempty"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = StatusNew
	}
	return nil
}

// DisplayName — имя клиента для списков и отчётов: ФИО, иначе компания.
func (c *Client) DisplayName() string {
	if c.FullName != "" {
		return c.FullName
	}
	return c.CompanyName
}

// AssignmentHistory — неизменяемая запись о назначении специалиста.
// Строки только добавляются, по одной на каждое (пере)назначение.
type AssignmentHistory struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	ClientID string `gorm:"type:uuid;not null;index" json:"clientId"`

	SpecialistID string `gorm:"type:uuid;not null" json:"specialistId"`
	Specialist   *User  `json:"specialist,omitempty"`

	AssignedByID string `gorm:"type:uuid;not null" json:"assignedById"`
	AssignedBy   *User  `json:"assignedBy,omitempty"`

	AssignedAt time.Time `gorm:"not null" json:"assignedAt"`
}

func (h *AssignmentHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}
