package handlers

import (
	"net/http"
	"strings"
	"time"

	"crm-backend/internal/database"
	"crm-backend/internal/middleware"
	"crm-backend/internal/models"
	"crm-backend/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type registerInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

func Register(c *gin.Context) {
	var in registerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondMessage(c, http.StatusBadRequest, "Некорректные данные")
		return
	}

	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)

	if in.Email == "" || in.Password == "" || in.FullName == "" {
		respondMessage(c, http.StatusBadRequest, "Email, пароль и ФИО обязательны")
		return
	}
	if len(in.Password) < 6 {
		respondMessage(c, http.StatusBadRequest, "Пароль должен содержать минимум 6 символов")
		return
	}

	// через регистрацию нельзя получить административную роль
	role := models.RoleSpecialist
	if in.Role != "" {
		r, ok := models.NormalizeRole(in.Role)
		if !ok || r == models.RoleAdmin {
			respondMessage(c, http.StatusBadRequest, "Некорректная роль")
			return
		}
		role = r
	}

	var existing models.User
	if err := database.DB.Where("email = ?", in.Email).First(&existing).Error; err == nil {
		respondMessage(c, http.StatusBadRequest, "Пользователь с таким email уже существует")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
		return
	}

	user := models.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		FullName:     in.FullName,
		Role:         role,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сохранения пользователя")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login проверяет пароль, открывает cookie-сессию для браузера и выдаёт
// Bearer-токен для API-клиентов.
func Login(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in loginInput
		if err := c.ShouldBindJSON(&in); err != nil {
			respondMessage(c, http.StatusBadRequest, "Некорректные данные")
			return
		}
		if in.Email == "" || in.Password == "" {
			respondMessage(c, http.StatusBadRequest, "Email и пароль обязательны")
			return
		}

		var user models.User
		if err := database.DB.Where("email = ?", in.Email).First(&user).Error; err != nil {
			respondMessage(c, http.StatusUnauthorized, "Неверный email или пароль")
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
			respondMessage(c, http.StatusUnauthorized, "Неверный email или пароль")
			return
		}

		sess := sessions.Default(c)
		sess.Set("user_id", user.ID)
		_ = sess.Save()

		token, err := utils.NewAccessToken(jwtSecret, user.ID, string(user.Role), 24*time.Hour)
		if err != nil {
			respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user":        user,
			"accessToken": token.Token,
		})
	}
}

func Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, "Не авторизован")
		return
	}
	c.JSON(http.StatusOK, user)
}
