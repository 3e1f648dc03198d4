package handlers

import (
	"net/http"
	"time"

	"crm-backend/internal/database"
	"crm-backend/internal/middleware"
	"crm-backend/internal/models"
	"crm-backend/internal/policy"
	"crm-backend/internal/queue"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type assignInput struct {
	SpecialistID string `json:"specialistId"`
}

// AssignClient назначает специалиста. Обновление клиента, запись истории и
// аудит идут одной транзакцией, чтобы след назначения не расходился с
// состоянием клиента.
func AssignClient(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	if !policy.CanPerform(policy.OpClientAssign, user.Role) {
		respondMessage(c, http.StatusForbidden, "Недостаточно прав")
		return
	}

	var in assignInput
	if err := c.ShouldBindJSON(&in); err != nil || in.SpecialistID == "" {
		respondMessage(c, http.StatusBadRequest, "ID специалиста обязателен")
		return
	}

	id := c.Param("id")

	var client models.Client
	if err := database.DB.First(&client, "id = ?", id).Error; err != nil {
		respondMessage(c, http.StatusNotFound, "Клиент не найден")
		return
	}

	var specialist models.User
	err := database.DB.First(&specialist, "id = ?", in.SpecialistID).Error
	if err != nil || specialist.Role != models.RoleSpecialist {
		respondMessage(c, http.StatusBadRequest, "Указанный пользователь не является специалистом")
		return
	}

	prev := client.AssignedToID
	now := time.Now().UTC()

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		// подтверждение сбрасывается и при переназначении
		if err := tx.Model(&models.Client{}).Where("id = ?", client.ID).Updates(map[string]any{
			"assigned_to_id":  specialist.ID,
			"assigned_at":     now,
			"status":          models.StatusAssigned,
			"assignment_seen": false,
		}).Error; err != nil {
			return err
		}

		hist := models.AssignmentHistory{
			ClientID:     client.ID,
			SpecialistID: specialist.ID,
			AssignedByID: user.ID,
			AssignedAt:   now,
		}
		if err := tx.Create(&hist).Error; err != nil {
			return err
		}

		action := models.ActionSpecialistAssigned
		if prev != nil {
			action = models.ActionSpecialistReassigned
		}
		return database.CreateAuditLog(tx, user.ID, client.ID, action,
			"Специалист назначен: "+specialist.FullName)
	})
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
		return
	}

	_ = queue.Publish(c.Request.Context(), queue.QueueClientAssigned, queue.ClientAssignedEvent{
		ClientID:     client.ID,
		ClientName:   client.DisplayName(),
		AssigneeID:   specialist.ID,
		AssigneeName: specialist.FullName,
		AssigneeRole: string(models.RoleSpecialist),
		AssignedByID: user.ID,
		Reassigned:   prev != nil,
		AssignedAt:   now.Format(time.RFC3339),
	})

	updated, err := loadClient(client.ID)
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
		return
	}
	c.JSON(http.StatusOK, updated)
}

type assignDesignerInput struct {
	DesignerID string `json:"designerId"`
}

// AssignDesigner — дизайнерская ветка назначения. История назначений ведётся
// только для специалистов, статус клиента не меняется.
func AssignDesigner(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	if !policy.CanPerform(policy.OpClientAssign, user.Role) {
		respondMessage(c, http.StatusForbidden, "Недостаточно прав")
		return
	}

	var in assignDesignerInput
	if err := c.ShouldBindJSON(&in); err != nil || in.DesignerID == "" {
		respondMessage(c, http.StatusBadRequest, "ID дизайнера обязателен")
		return
	}

	id := c.Param("id")

	var client models.Client
	if err := database.DB.First(&client, "id = ?", id).Error; err != nil {
		respondMessage(c, http.StatusNotFound, "Клиент не найден")
		return
	}

	var designer models.User
	err := database.DB.First(&designer, "id = ?", in.DesignerID).Error
	if err != nil || designer.Role != models.RoleDesigner {
		respondMessage(c, http.StatusBadRequest, "Указанный пользователь не является дизайнером")
		return
	}

	prev := client.DesignerID
	now := time.Now().UTC()

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Client{}).Where("id = ?", client.ID).Updates(map[string]any{
			"designer_id":              designer.ID,
			"designer_assigned_at":     now,
			"designer_assignment_seen": false,
		}).Error; err != nil {
			return err
		}

		action := models.ActionDesignerAssigned
		if prev != nil {
			action = models.ActionDesignerReassigned
		}
		return database.CreateAuditLog(tx, user.ID, client.ID, action,
			"Дизайнер назначен: "+designer.FullName)
	})
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
		return
	}

	_ = queue.Publish(c.Request.Context(), queue.QueueClientAssigned, queue.ClientAssignedEvent{
		ClientID:     client.ID,
		ClientName:   client.DisplayName(),
		AssigneeID:   designer.ID,
		AssigneeName: designer.FullName,
		AssigneeRole: string(models.RoleDesigner),
		AssignedByID: user.ID,
		Reassigned:   prev != nil,
		AssignedAt:   now.Format(time.RFC3339),
	})

	updated, err := loadClient(client.ID)
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Acknowledge — подтверждение назначения текущим исполнителем. Повторное
// подтверждение — ошибка клиента, не идемпотентный успех.
func Acknowledge(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id := c.Param("id")

	var client models.Client
	if err := database.DB.First(&client, "id = ?", id).Error; err != nil {
		respondMessage(c, http.StatusNotFound, "Клиент не найден")
		return
	}

	now := time.Now().UTC()

	switch user.Role {
	case models.RoleDesigner:
		if client.DesignerID == nil || *client.DesignerID != user.ID {
			respondMessage(c, http.StatusForbidden, "Вы не назначены на данного клиента как дизайнер")
			return
		}
		if client.DesignerAssignmentSeen {
			respondMessage(c, http.StatusBadRequest, "Назначение дизайнера уже подтверждено")
			return
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Client{}).Where("id = ?", client.ID).
				Update("designer_assignment_seen", true).Error; err != nil {
				return err
			}
			return database.CreateAuditLog(tx, user.ID, client.ID,
				models.ActionDesignerAcknowledged, "Дизайнер принял клиента в работу")
		})
		if err != nil {
			respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
			return
		}

	case models.RoleSpecialist:
		if client.AssignedToID == nil || *client.AssignedToID != user.ID {
			respondMessage(c, http.StatusForbidden, "Вы не назначены на данного клиента")
			return
		}
		if client.AssignmentSeen {
			respondMessage(c, http.StatusBadRequest, "Назначение уже подтверждено")
			return
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Client{}).Where("id = ?", client.ID).Updates(map[string]any{
				"assignment_seen": true,
				"status":          models.StatusInWork,
			}).Error; err != nil {
				return err
			}
			return database.CreateAuditLog(tx, user.ID, client.ID,
				models.ActionAssignmentAcknowledged, "Специалист принял клиента в работу")
		})
		if err != nil {
			respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
			return
		}

	default:
		respondMessage(c, http.StatusForbidden, "Недостаточно прав")
		return
	}

	_ = queue.Publish(c.Request.Context(), queue.QueueClientAcknowledged, queue.ClientAcknowledgedEvent{
		ClientID:       client.ID,
		UserID:         user.ID,
		Role:           string(user.Role),
		AcknowledgedAt: now.Format(time.RFC3339),
	})

	updated, err := loadClient(client.ID)
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
		return
	}
	c.JSON(http.StatusOK, updated)
}
