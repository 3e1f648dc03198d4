package handlers

import (
	"net/http"

	"crm-backend/internal/database"
	"crm-backend/internal/middleware"
	"crm-backend/internal/models"
	"crm-backend/internal/policy"

	"github.com/gin-gonic/gin"
)

// ListEmployees возвращает сотрудников, которым можно назначать клиентов
// и задачи (все роли, кроме администраторов).
func ListEmployees(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	if !policy.CanPerform(policy.OpUsersManage, user.Role) {
		respondMessage(c, http.StatusForbidden, "Недостаточно прав")
		return
	}

	var users []models.User
	if err := database.DB.
		Where("role IN ?", []models.Role{
			models.RoleSpecialist,
			models.RoleDesigner,
			models.RoleSalesManager,
		}).
		Order("full_name asc").
		Find(&users).Error; err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
		return
	}

	c.JSON(http.StatusOK, users)
}

type updateRoleInput struct {
	Role string `json:"role"`
}

func UpdateUserRole(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	if !policy.CanPerform(policy.OpUsersManage, actor.Role) {
		respondMessage(c, http.StatusForbidden, "Недостаточно прав")
		return
	}

	var in updateRoleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondMessage(c, http.StatusBadRequest, "Некорректные данные")
		return
	}

	role, ok := models.NormalizeRole(in.Role)
	if !ok {
		respondMessage(c, http.StatusBadRequest, "Некорректная роль")
		return
	}

	id := c.Param("id")

	var user models.User
	if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
		respondMessage(c, http.StatusNotFound, "Пользователь не найден")
		return
	}

	oldRole := user.Role
	if err := database.DB.Model(&user).Update("role", role).Error; err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сохранения пользователя")
		return
	}
	user.Role = role

	_ = database.CreateAuditLog(database.DB, actor.ID, "",
		models.ActionRoleChanged,
		"Роль пользователя "+user.FullName+" изменена: "+string(oldRole)+" → "+string(role))

	c.JSON(http.StatusOK, user)
}
