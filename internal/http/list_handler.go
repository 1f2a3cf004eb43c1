package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"task-manager/internal/domain"
	"task-manager/internal/service"
)

// ListHandler expone el CRUD de listas del usuario autenticado.
type ListHandler struct {
	logger *zap.Logger
	lists  *service.ListService
}

func NewListHandler(logger *zap.Logger, lists *service.ListService) *ListHandler {
	return &ListHandler{logger: logger, lists: lists}
}

// GetLists maneja GET /lists.
func (h *ListHandler) GetLists(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrInvalidToken.Error()})
		return
	}
	lists, err := h.lists.Lists(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("get lists failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get lists"})
		return
	}
	c.JSON(http.StatusOK, lists)
}

// CreateList maneja POST /lists.
func (h *ListHandler) CreateList(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrInvalidToken.Error()})
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create list request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	list, err := h.lists.Create(c.Request.Context(), userID, req.Title)
	if err != nil {
		h.writeError(c, "create list failed", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// UpdateList maneja PATCH /lists/:listId.
func (h *ListHandler) UpdateList(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrInvalidToken.Error()})
		return
	}
	var req struct {
		Title *string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update list request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.lists.Update(c.Request.Context(), userID, c.Param("listId"), domain.ListPatch{Title: req.Title}); err != nil {
		h.writeError(c, "update list failed", err)
		return
	}
	c.Status(http.StatusOK)
}

// DeleteList maneja DELETE /lists/:listId; las tareas de la lista se borran antes de responder.
func (h *ListHandler) DeleteList(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrInvalidToken.Error()})
		return
	}
	removed, err := h.lists.Delete(c.Request.Context(), userID, c.Param("listId"))
	if err != nil {
		h.writeError(c, "delete list failed", err)
		return
	}
	c.JSON(http.StatusOK, removed)
}

func (h *ListHandler) writeError(c *gin.Context, msg string, err error) {
	writeResourceError(h.logger, c, msg, err)
}

// writeResourceError traduce errores de listas y tareas a status HTTP.
func writeResourceError(logger *zap.Logger, c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidTitle):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrListNotFound), errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
