package handlers

import (
	"net/http"
	"strconv"
	"time"

	"crm-backend/internal/database"
	"crm-backend/internal/middleware"
	"crm-backend/internal/models"
	"crm-backend/internal/policy"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// dashboardClient — фиксированная проекция клиента для дашборда.
type dashboardClient struct {
	ID                 string              `json:"id"`
	FullName           string              `json:"fullName"`
	CompanyName        string              `json:"companyName"`
	Phone              string              `json:"phone"`
	Email              string              `json:"email"`
	Status             models.ClientStatus `json:"status"`
	Services           []string            `gorm:"serializer:json" json:"services"`
	CreatedAt          time.Time           `json:"createdAt"`
	AssignedAt         *time.Time          `json:"assignedAt"`
	DesignerAssignedAt *time.Time          `json:"designerAssignedAt"`
}

func parseDashboardQuery(c *gin.Context) (int, int, bool) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Год должен быть числом")
		return 0, 0, false
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Месяц должен быть числом")
		return 0, 0, false
	}
	if year < 2020 {
		respondMessage(c, http.StatusBadRequest, "Год должен быть не менее 2020")
		return 0, 0, false
	}
	if year > 2100 {
		respondMessage(c, http.StatusBadRequest, "Год должен быть не более 2100")
		return 0, 0, false
	}
	if month < 1 || month > 12 {
		respondMessage(c, http.StatusBadRequest, "Месяц должен быть от 1 до 12")
		return 0, 0, false
	}
	return year, month, true
}

// monthWindow возвращает границы месяца: [первое число 00:00:00,
// последнее число 23:59:59.999].
func monthWindow(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return start, end
}

func personalDashboard(userID string, role models.Role, year, month int) (gin.H, error) {
	scope, ok := policy.DashboardScopeFor(role)
	if !ok {
		// у роли нет персонального дашборда — пустой результат, не ошибка
		return gin.H{
			"count":   0,
			"clients": []dashboardClient{},
			"month":   month,
			"year":    year,
			"role":    role,
		}, nil
	}

	start, end := monthWindow(year, month)

	query := func() *gorm.DB {
		return database.DB.Model(&models.Client{}).
			Where(scope.Where, userID).
			Where(scope.DateField+" BETWEEN ? AND ?", start, end)
	}

	var count int64
	if err := query().Count(&count).Error; err != nil {
		return nil, err
	}

	clients := []dashboardClient{}
	if err := query().Order(scope.DateField + " desc").Find(&clients).Error; err != nil {
		return nil, err
	}

	return gin.H{
		"count":   count,
		"clients": clients,
		"month":   month,
		"year":    year,
		"role":    role,
	}, nil
}

func GetMyDashboard(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	year, month, ok := parseDashboardQuery(c)
	if !ok {
		return
	}

	data, err := personalDashboard(user.ID, user.Role, year, month)
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
		return
	}
	c.JSON(http.StatusOK, data)
}

// GetUserDashboard — тот же расчёт от имени другого пользователя (админ).
func GetUserDashboard(c *gin.Context) {
	year, month, ok := parseDashboardQuery(c)
	if !ok {
		return
	}

	var target models.User
	if err := database.DB.First(&target, "id = ?", c.Param("userId")).Error; err != nil {
		respondMessage(c, http.StatusNotFound, "Пользователь не найден")
		return
	}

	data, err := personalDashboard(target.ID, target.Role, year, month)
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
		return
	}

	data["user"] = gin.H{
		"id":       target.ID,
		"fullName": target.FullName,
		"role":     target.Role,
	}
	c.JSON(http.StatusOK, data)
}
