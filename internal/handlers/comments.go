package handlers

import (
	"net/http"
	"strings"

	"crm-backend/internal/database"
	"crm-backend/internal/middleware"
	"crm-backend/internal/models"

	"github.com/gin-gonic/gin"
)

type createCommentInput struct {
	Content string `json:"content"`
}

func CreateComment(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var in createCommentInput
	if err := c.ShouldBindJSON(&in); err != nil || strings.TrimSpace(in.Content) == "" {
		respondMessage(c, http.StatusBadRequest, "Комментарий не может быть пустым")
		return
	}

	id := c.Param("id")

	var client models.Client
	if err := database.DB.First(&client, "id = ?", id).Error; err != nil {
		respondMessage(c, http.StatusNotFound, "Клиент не найден")
		return
	}

	comment := models.Comment{
		Content:  strings.TrimSpace(in.Content),
		ClientID: client.ID,
		AuthorID: user.ID,
	}
	if err := database.DB.Create(&comment).Error; err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сохранения комментария")
		return
	}

	comment.Author = &user
	c.JSON(http.StatusCreated, comment)
}

func ListClientComments(c *gin.Context) {
	var comments []models.Comment
	if err := database.DB.
		Where("client_id = ?", c.Param("id")).
		Preload("Author").
		Order("created_at desc").
		Find(&comments).Error; err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
		return
	}
	c.JSON(http.StatusOK, comments)
}
