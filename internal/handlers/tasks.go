package handlers

import (
	"net/http"
	"strings"
	"time"

	"crm-backend/internal/database"
	"crm-backend/internal/middleware"
	"crm-backend/internal/models"
	"crm-backend/internal/policy"

	"github.com/gin-gonic/gin"
)

type createTaskInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	AssigneeID  *string `json:"assigneeId"`
	DueDate     *string `json:"dueDate"`
}

func CreateTask(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var in createTaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondMessage(c, http.StatusBadRequest, "Некорректные данные")
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		respondMessage(c, http.StatusBadRequest, "Название задачи обязательно")
		return
	}

	priority := models.PriorityMedium
	if in.Priority != "" {
		priority = models.TaskPriority(in.Priority)
		if !models.ValidTaskPriority(priority) {
			respondMessage(c, http.StatusBadRequest, "Некорректный приоритет")
			return
		}
	}

	var dueDate *time.Time
	if in.DueDate != nil && *in.DueDate != "" {
		t, err := time.Parse(time.RFC3339, *in.DueDate)
		if err != nil {
			respondMessage(c, http.StatusBadRequest, "Некорректный срок задачи")
			return
		}
		dueDate = &t
	}

	id := c.Param("id")

	var client models.Client
	if err := database.DB.First(&client, "id = ?", id).Error; err != nil {
		respondMessage(c, http.StatusNotFound, "Клиент не найден")
		return
	}

	task := models.Task{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      models.TaskTodo,
		Priority:    priority,
		DueDate:     dueDate,
		ClientID:    client.ID,
		CreatorID:   user.ID,
		AssigneeID:  in.AssigneeID,
	}
	if err := database.DB.Create(&task).Error; err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сохранения задачи")
		return
	}

	created, err := loadTask(task.ID)
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func loadTask(id string) (models.Task, error) {
	var task models.Task
	err := database.DB.
		Preload("Client").
		Preload("Creator").
		Preload("Assignee").
		First(&task, "id = ?", id).Error
	return task, err
}

func ListClientTasks(c *gin.Context) {
	var tasks []models.Task
	if err := database.DB.
		Where("client_id = ?", c.Param("id")).
		Preload("Client").
		Preload("Creator").
		Preload("Assignee").
		Order("status asc").
		Order("priority desc").
		Order("created_at desc").
		Find(&tasks).Error; err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// MyTasks — открытые задачи текущего исполнителя.
func MyTasks(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var tasks []models.Task
	if err := database.DB.
		Where("assignee_id = ? AND status <> ?", user.ID, models.TaskDone).
		Preload("Client").
		Preload("Creator").
		Preload("Assignee").
		Order("priority desc").
		Order("due_date asc NULLS LAST").
		Order("created_at desc").
		Find(&tasks).Error; err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func GetTask(c *gin.Context) {
	task, err := loadTask(c.Param("id"))
	if err != nil {
		respondMessage(c, http.StatusNotFound, "Задача не найдена")
		return
	}
	c.JSON(http.StatusOK, task)
}

type updateTaskInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
	AssigneeID  *string `json:"assigneeId"`
	DueDate     *string `json:"dueDate"`
}

func UpdateTask(c *gin.Context) {
	id := c.Param("id")

	var task models.Task
	if err := database.DB.First(&task, "id = ?", id).Error; err != nil {
		respondMessage(c, http.StatusNotFound, "Задача не найдена")
		return
	}

	var in updateTaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondMessage(c, http.StatusBadRequest, "Некорректные данные")
		return
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			respondMessage(c, http.StatusBadRequest, "Название задачи обязательно")
			return
		}
		task.Title = title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Priority != nil {
		priority := models.TaskPriority(*in.Priority)
		if !models.ValidTaskPriority(priority) {
			respondMessage(c, http.StatusBadRequest, "Некорректный приоритет")
			return
		}
		task.Priority = priority
	}
	if in.Status != nil {
		status := models.TaskStatus(*in.Status)
		if !models.ValidTaskStatus(status) {
			respondMessage(c, http.StatusBadRequest, "Некорректный статус задачи")
			return
		}
		task.Status = status
	}
	if in.AssigneeID != nil {
		if *in.AssigneeID == "" {
			task.AssigneeID = nil
		} else {
			task.AssigneeID = in.AssigneeID
		}
	}
	if in.DueDate != nil {
		if *in.DueDate == "" {
			task.DueDate = nil
		} else {
			t, err := time.Parse(time.RFC3339, *in.DueDate)
			if err != nil {
				respondMessage(c, http.StatusBadRequest, "Некорректный срок задачи")
				return
			}
			task.DueDate = &t
		}
	}

	if err := database.DB.Save(&task).Error; err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сохранения задачи")
		return
	}

	updated, err := loadTask(task.ID)
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func DeleteTask(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	if !policy.CanPerform(policy.OpTaskDelete, user.Role) {
		respondMessage(c, http.StatusForbidden, "Недостаточно прав")
		return
	}

	id := c.Param("id")

	var task models.Task
	if err := database.DB.First(&task, "id = ?", id).Error; err != nil {
		respondMessage(c, http.StatusNotFound, "Задача не найдена")
		return
	}

	if err := database.DB.Delete(&task).Error; err != nil {
		respondMessage(c, http.StatusInternalServerError, "Ошибка сервера")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
