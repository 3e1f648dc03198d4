package handlers

import (
	"net/http"

	"crm-backend/internal/database"
	"crm-backend/internal/middleware"
	"crm-backend/internal/models"
	"crm-backend/internal/policy"

	"github.com/gin-gonic/gin"
)

// GetClientAudit — след действий по клиенту, новые записи первыми.
func GetClientAudit(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	if !policy.CanPerform(policy.OpAuditView, user.Role) {
		respondMessage(c, http.StatusForbidden, "Недостаточно прав")
		return
	}

	var logs []models.AuditLog
	if err := database.DB.
		Where("client_id = ?", c.Param("id")).
		Preload("User").
		Order("created_at desc").
		Limit(200).
		Find(&logs).Error; err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
		return
	}

	c.JSON(http.StatusOK, logs)
}
