package middleware

import (
	"strings"

	"crm-backend/internal/database"
	"crm-backend/internal/models"
	"crm-backend/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// InjectUser определяет пользователя по сессии (браузер) или по
// Bearer-токену (API-клиенты) и кладёт его в контекст запроса.
func InjectUser(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := ""

		sess := sessions.Default(c)
		if v := sess.Get("user_id"); v != nil {
			if s, ok := v.(string); ok {
				uid = s
			}
		}

		if uid == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				raw := strings.TrimPrefix(auth, "Bearer ")
				if sub, err := utils.ParseAccessToken(jwtSecret, raw); err == nil {
					uid = sub
				}
			}
		}

		if uid != "" {
			var user models.User
			if err := database.DB.First(&user, "id = ?", uid).Error; err == nil {
				c.Set("CurrentUser", user)
			}
		}

		c.Next()
	}
}

// CurrentUser достаёт пользователя, положенного InjectUser.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get("CurrentUser")
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}
