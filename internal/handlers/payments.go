package handlers

import (
	"net/http"

	"crm-backend/internal/database"
	"crm-backend/internal/middleware"
	"crm-backend/internal/models"
	"crm-backend/internal/policy"

	"github.com/gin-gonic/gin"
)

type createPaymentInput struct {
	Amount    *int   `json:"amount"`
	Month     string `json:"month"`
	IsRenewal *bool  `json:"isRenewal"`
}

func CreatePayment(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	if !policy.CanPerform(policy.OpPaymentCreate, user.Role) {
		respondMessage(c, http.StatusForbidden, "Недостаточно прав для создания платежа")
		return
	}

	var in createPaymentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondMessage(c, http.StatusBadRequest, "Некорректные данные")
		return
	}
	if in.Amount == nil {
		respondMessage(c, http.StatusBadRequest, "Сумма обязательна")
		return
	}
	if *in.Amount < 1 {
		respondMessage(c, http.StatusBadRequest, "Сумма должна быть больше 0")
		return
	}
	if in.Month == "" {
		respondMessage(c, http.StatusBadRequest, "Месяц обязателен")
		return
	}
	if !models.ValidMonth(in.Month) {
		respondMessage(c, http.StatusBadRequest, "Месяц должен быть в формате YYYY-MM")
		return
	}
	if in.IsRenewal == nil {
		respondMessage(c, http.StatusBadRequest, "Тип платежа обязателен")
		return
	}

	id := c.Param("id")

	var client models.Client
	if err := database.DB.First(&client, "id = ?", id).Error; err != nil {
		respondMessage(c, http.StatusNotFound, "Клиент не найден")
		return
	}

	payment := models.Payment{
		Amount:    *in.Amount,
		Month:     in.Month,
		IsRenewal: *in.IsRenewal,
		ClientID:  client.ID,
		ManagerID: user.ID,
	}
	if err := database.DB.Create(&payment).Error; err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сохранения платежа")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        payment.ID,
		"amount":    payment.Amount,
		"month":     payment.Month,
		"isRenewal": payment.IsRenewal,
		"createdAt": payment.CreatedAt,
		"client": gin.H{
			"id":          client.ID,
			"fullName":    client.FullName,
			"companyName": client.CompanyName,
		},
		"manager": gin.H{
			"id":       user.ID,
			"fullName": user.FullName,
		},
	})
}

func ListClientPayments(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	// специалисту и дизайнеру платежи не видны вовсе
	if !policy.CanPerform(policy.OpPaymentView, user.Role) {
		respondMessage(c, http.StatusForbidden, "Недостаточно прав для просмотра платежей")
		return
	}

	q := database.DB.Where("client_id = ?", c.Param("id"))

	// sales-менеджер видит только свои платежи
	if user.Role == models.RoleSalesManager {
		q = q.Where("manager_id = ?", user.ID)
	}

	var payments []models.Payment
	if err := q.
		Preload("Manager").
		Order("created_at desc").
		Find(&payments).Error; err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
		return
	}

	c.JSON(http.StatusOK, payments)
}

// GetRenewals — сводка продлений за месяц: только ADMIN и SPECIALIST,
// специалист ограничен своими клиентами.
func GetRenewals(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	if !policy.CanPerform(policy.OpRenewalsView, user.Role) {
		respondMessage(c, http.StatusForbidden, "Недостаточно прав для просмотра продлений")
		return
	}

	month := c.Query("month")
	if !models.ValidMonth(month) {
		respondMessage(c, http.StatusBadRequest, "Некорректный формат месяца (YYYY-MM)")
		return
	}

	q := database.DB.Where("is_renewal = true AND month = ?", month)
	if user.Role == models.RoleSpecialist {
		q = q.Where("client_id IN (SELECT id FROM clients WHERE assigned_to_id = ?)", user.ID)
	}

	var payments []models.Payment
	if err := q.
		Preload("Client").
		Preload("Client.AssignedTo").
		Order("created_at desc").
		Find(&payments).Error; err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
		return
	}

	clients := make([]gin.H, 0, len(payments))
	for _, p := range payments {
		var clientName string
		var specialist any
		if p.Client != nil {
			clientName = p.Client.DisplayName()
			if p.Client.AssignedTo != nil {
				specialist = gin.H{
					"id":       p.Client.AssignedTo.ID,
					"fullName": p.Client.AssignedTo.FullName,
				}
			}
		}
		clients = append(clients, gin.H{
			"clientId":   p.ClientID,
			"clientName": clientName,
			"amount":     p.Amount,
			"renewedAt":  p.CreatedAt.Format("2006-01-02"),
			"specialist": specialist,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"month":         month,
		"totalRenewals": len(payments),
		"clients":       clients,
	})
}
