package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Content string `gorm:"type:text;not null" json:"content"`

	ClientID string `gorm:"type:uuid;not null;index" json:"clientId"`

	AuthorID string `gorm:"type:uuid;not null" json:"authorId"`
	Author   *User  `json:"author,omitempty"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
