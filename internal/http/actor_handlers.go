package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fleet-service/internal/http/middleware"
	"fleet-service/internal/model"
	"fleet-service/internal/service"
)

func (h *Handler) createActor(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req struct {
		Email    string  `json:"email" binding:"required"`
		FullName string  `json:"full_name" binding:"required"`
		Phone    string  `json:"phone"`
		Password string  `json:"password" binding:"required"`
		Role     string  `json:"role" binding:"required"`
		DriverID *string `json:"driver_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	var driverID *uuid.UUID
	if req.DriverID != nil && strings.TrimSpace(*req.DriverID) != "" {
		parsed, err := uuid.Parse(strings.TrimSpace(*req.DriverID))
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid driver_id"))
			return
		}
		driverID = &parsed
	}

	actor, err := h.actorService.Create(c.Request.Context(), principal, service.CreateActorInput{
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     model.ActorRole(strings.ToLower(strings.TrimSpace(req.Role))),
		DriverID: driverID,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(actor))
}

func (h *Handler) listActors(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	limit, offset := parsePagination(c)
	actors, err := h.actorService.List(c.Request.Context(), principal, limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": actors}))
}

func (h *Handler) getActor(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	actor, err := h.actorService.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(actor))
}

func (h *Handler) deactivateActor(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.actorService.Deactivate(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": "deactivated"}))
}

func (h *Handler) unlockActor(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.actorService.Unlock(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": "unlocked"}))
}
