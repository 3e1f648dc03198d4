package database

import (
	"crm-backend/internal/models"

	"gorm.io/gorm"
)

// CreateAuditLog пишет запись в журнал аудита. Принимает tx, чтобы запись
// попадала в ту же транзакцию, что и изменение, которое она фиксирует.
func CreateAuditLog(tx *gorm.DB, userID, clientID, action, details string) error {
	record := models.AuditLog{
		Action:  action,
		UserID:  userID,
		Details: details,
	}
	if clientID != "" {
		record.ClientID = &clientID
	}
	return tx.Create(&record).Error
}
