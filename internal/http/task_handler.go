package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"task-manager/internal/domain"
	"task-manager/internal/service"
)

// TaskHandler expone el CRUD de tareas dentro de una lista propia.
type TaskHandler struct {
	logger *zap.Logger
	tasks  *service.TaskService
}

func NewTaskHandler(logger *zap.Logger, tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{logger: logger, tasks: tasks}
}

// GetTasks maneja GET /lists/:listId/tasks.
func (h *TaskHandler) GetTasks(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrInvalidToken.Error()})
		return
	}
	tasks, err := h.tasks.Tasks(c.Request.Context(), userID, c.Param("listId"))
	if err != nil {
		writeResourceError(h.logger, c, "get tasks failed", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// CreateTask maneja POST /lists/:listId/tasks.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrInvalidToken.Error()})
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create task request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), userID, c.Param("listId"), req.Title)
	if err != nil {
		writeResourceError(h.logger, c, "create task failed", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTask maneja PATCH /lists/:listId/tasks/:taskId.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrInvalidToken.Error()})
		return
	}
	var req struct {
		Title     *string `json:"title"`
		Completed *bool   `json:"completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update task request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	patch := domain.TaskPatch{Title: req.Title, Completed: req.Completed}
	if err := h.tasks.Update(c.Request.Context(), userID, c.Param("listId"), c.Param("taskId"), patch); err != nil {
		writeResourceError(h.logger, c, "update task failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Updated successfully."})
}

// DeleteTask maneja DELETE /lists/:listId/tasks/:taskId.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrInvalidToken.Error()})
		return
	}
	removed, err := h.tasks.Delete(c.Request.Context(), userID, c.Param("listId"), c.Param("taskId"))
	if err != nil {
		writeResourceError(h.logger, c, "delete task failed", err)
		return
	}
	c.JSON(http.StatusOK, removed)
}
