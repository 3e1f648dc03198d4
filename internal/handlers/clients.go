package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"crm-backend/internal/database"
	"crm-backend/internal/middleware"
	"crm-backend/internal/models"
	"crm-backend/internal/policy"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	phoneRe = regexp.MustCompile(`^\+?[\d\s\-()]{7,20}$`)
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// loadClient перечитывает клиента с именами создателя и назначенных.
func loadClient(id string) (models.Client, error) {
	var client models.Client
	err := database.DB.
		Preload("CreatedBy").
		Preload("AssignedTo").
		Preload("Designer").
		First(&client, "id = ?", id).Error
	return client, err
}

type createClientInput struct {
	FullName    string   `json:"fullName"`
	CompanyName string   `json:"companyName"`
	Phone       string   `json:"phone"`
	Email       string   `json:"email"`
	Source      string   `json:"source"`
	Notes       string   `json:"notes"`
	GroupName   string   `json:"groupName"`
	Services    []string `json:"services"`
}

func CreateClient(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	if !policy.CanPerform(policy.OpClientCreate, user.Role) {
		respondMessage(c, http.StatusForbidden, "Недостаточно прав")
		return
	}

	var in createClientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondMessage(c, http.StatusBadRequest, "Некорректные данные")
		return
	}

	in.FullName = strings.TrimSpace(in.FullName)
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)

	if in.FullName == "" && in.CompanyName == "" {
		respondMessage(c, http.StatusBadRequest, "Необходимо указать ФИО или название компании")
		return
	}
	if in.Phone == "" {
		respondMessage(c, http.StatusBadRequest, "Телефон обязателен")
		return
	}
	if !phoneRe.MatchString(in.Phone) {
		respondMessage(c, http.StatusBadRequest, "Некорректный формат телефона")
		return
	}
	if in.Email != "" && !emailRe.MatchString(in.Email) {
		respondMessage(c, http.StatusBadRequest, "Некорректный email")
		return
	}
	if len(in.Services) == 0 {
		respondMessage(c, http.StatusBadRequest, "Выберите хотя бы одну услугу")
		return
	}

	client := models.Client{
		FullName:    in.FullName,
		CompanyName: in.CompanyName,
		Phone:       in.Phone,
		Email:       in.Email,
		Source:      in.Source,
		Notes:       in.Notes,
		GroupName:   in.GroupName,
		Services:    in.Services,
		Status:      models.StatusNew,
		CreatedByID: user.ID,
	}

	if err := database.DB.Create(&client).Error; err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сохранения клиента")
		return
	}

	_ = database.CreateAuditLog(database.DB, user.ID, client.ID,
		models.ActionClientCreated, "Клиент создан: "+client.DisplayName())

	created, err := loadClient(client.ID)
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func ListClients(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	q := database.DB.Model(&models.Client{}).Where("archived = false")

	// специалист видит только своих клиентов
	if user.Role == models.RoleSpecialist {
		q = q.Where("assigned_to_id = ?", user.ID)
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + search + "%"
		q = q.Where(
			"full_name ILIKE ? OR company_name ILIKE ? OR phone LIKE ? OR email ILIKE ?",
			like, like, like, like,
		)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if c.Query("unassigned") == "true" {
		q = q.Where("assigned_to_id IS NULL")
	}

	var clients []models.Client
	if err := q.
		Preload("CreatedBy").
		Preload("AssignedTo").
		Order("created_at desc").
		Find(&clients).Error; err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
		return
	}

	c.JSON(http.StatusOK, clients)
}

func GetClient(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id := c.Param("id")

	var client models.Client
	if err := database.DB.First(&client, "id = ?", id).Error; err != nil {
		respondMessage(c, http.StatusNotFound, "Клиент не найден")
		return
	}

	// чужой клиент для специалиста — 403, а не 404: существование не скрываем
	if !policy.CanViewClient(user.Role, user.ID, client.AssignedToID) {
		respondMessage(c, http.StatusForbidden, "Нет доступа к данному клиенту")
		return
	}

	var full models.Client
	if err := database.DB.
		Preload("CreatedBy").
		Preload("AssignedTo").
		Preload("Designer").
		Preload("AssignmentHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("assigned_at desc")
		}).
		Preload("AssignmentHistory.Specialist").
		Preload("AssignmentHistory.AssignedBy").
		First(&full, "id = ?", id).Error; err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
		return
	}

	c.JSON(http.StatusOK, full)
}

type updateClientInput struct {
	FullName    *string  `json:"fullName"`
	CompanyName *string  `json:"companyName"`
	Phone       *string  `json:"phone"`
	Email       *string  `json:"email"`
	Source      *string  `json:"source"`
	Notes       *string  `json:"notes"`
	GroupName   *string  `json:"groupName"`
	Services    []string `json:"services"`
	Status      *string  `json:"status"`
}

func UpdateClient(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id := c.Param("id")

	var client models.Client
	if err := database.DB.First(&client, "id = ?", id).Error; err != nil {
		respondMessage(c, http.StatusNotFound, "Клиент не найден")
		return
	}

	if !policy.CanViewClient(user.Role, user.ID, client.AssignedToID) {
		respondMessage(c, http.StatusForbidden, "Нет доступа к данному клиенту")
		return
	}

	var in updateClientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondMessage(c, http.StatusBadRequest, "Некорректные данные")
		return
	}

	// статус меняет только администратор, даже если остальные поля валидны
	if in.Status != nil && !policy.CanPerform(policy.OpStatusChange, user.Role) {
		respondMessage(c, http.StatusForbidden, "Только администратор может менять статус клиента")
		return
	}

	oldStatus := client.Status

	if in.FullName != nil {
		client.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.CompanyName != nil {
		client.CompanyName = strings.TrimSpace(*in.CompanyName)
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if !phoneRe.MatchString(phone) {
			respondMessage(c, http.StatusBadRequest, "Некорректный формат телефона")
			return
		}
		client.Phone = phone
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != "" && !emailRe.MatchString(email) {
			respondMessage(c, http.StatusBadRequest, "Некорректный email")
			return
		}
		client.Email = email
	}
	if in.Source != nil {
		client.Source = *in.Source
	}
	if in.Notes != nil {
		client.Notes = *in.Notes
	}
	if in.GroupName != nil {
		client.GroupName = *in.GroupName
	}
	if in.Services != nil {
		client.Services = in.Services
	}
	if in.Status != nil {
		status := models.ClientStatus(*in.Status)
		if !models.ValidStatus(status) {
			respondMessage(c, http.StatusBadRequest, "Некорректный статус")
			return
		}
		client.Status = status
	}

	if client.FullName == "" && client.CompanyName == "" {
		respondMessage(c, http.StatusBadRequest, "Необходимо указать ФИО или название компании")
		return
	}

	if err := database.DB.Save(&client).Error; err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сохранения клиента")
		return
	}

	if in.Status != nil && client.Status != oldStatus {
		_ = database.CreateAuditLog(database.DB, user.ID, client.ID,
			models.ActionStatusChanged,
			fmt.Sprintf("Статус изменён: %s → %s", oldStatus, client.Status))
	}

	updated, err := loadClient(client.ID)
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ArchiveClient помечает клиента архивным. Из общих списков он пропадает,
// но по id остаётся доступен.
func ArchiveClient(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	if !policy.CanPerform(policy.OpClientArchive, user.Role) {
		respondMessage(c, http.StatusForbidden, "Недостаточно прав")
		return
	}

	id := c.Param("id")

	var client models.Client
	if err := database.DB.First(&client, "id = ?", id).Error; err != nil {
		respondMessage(c, http.StatusNotFound, "Клиент не найден")
		return
	}

	if err := database.DB.Model(&client).Update("archived", true).Error; err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сохранения клиента")
		return
	}
	client.Archived = true

	_ = database.CreateAuditLog(database.DB, user.ID, client.ID,
		models.ActionClientArchived, "Клиент архивирован")

	c.JSON(http.StatusOK, client)
}
