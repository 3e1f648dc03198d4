package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string
type TaskPriority string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"

	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

func ValidTaskStatus(s TaskStatus) bool {
	return s == TaskTodo || s == TaskInProgress || s == TaskDone
}

func ValidTaskPriority(p TaskPriority) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Task struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`

	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null" json:"status"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null" json:"priority"`
	DueDate     *time.Time   `json:"dueDate"`

	ClientID string  `gorm:"type:uuid;not null;index" json:"clientId"`
	Client   *Client `json:"client,omitempty"`

	CreatorID string `gorm:"type:uuid;not null" json:"creatorId"`
	Creator   *User  `json:"creator,omitempty"`

	AssigneeID *string `gorm:"type:uuid;index" json:"assigneeId"`
	Assignee   *User   `json:"assignee,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = TaskTodo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	return nil
}
