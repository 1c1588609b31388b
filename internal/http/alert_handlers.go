package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fleet-service/internal/http/middleware"
	"fleet-service/internal/model"
	"fleet-service/internal/repository"
	"fleet-service/internal/service"
)

func (h *Handler) createAlert(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req struct {
		Type      string     `json:"type" binding:"required"`
		Severity  string     `json:"severity" binding:"required"`
		Title     string     `json:"title" binding:"required"`
		Message   string     `json:"message"`
		VehicleID *string    `json:"vehicle_id"`
		DriverID  *string    `json:"driver_id"`
		TripID    *string    `json:"trip_id"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	input := service.CreateAlertInput{
		Type:      model.AlertType(strings.ToLower(strings.TrimSpace(req.Type))),
		Severity:  model.AlertSeverity(strings.ToLower(strings.TrimSpace(req.Severity))),
		Title:     req.Title,
		Message:   req.Message,
		ExpiresAt: req.ExpiresAt,
	}

	var err error
	if input.VehicleID, err = parseOptionalUUID(req.VehicleID); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle_id"))
		return
	}
	if input.DriverID, err = parseOptionalUUID(req.DriverID); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid driver_id"))
		return
	}
	if input.TripID, err = parseOptionalUUID(req.TripID); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid trip_id"))
		return
	}

	alert, err := h.alertService.Create(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(alert))
}

func (h *Handler) listAlerts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	filter, err := parseAlertQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	alerts, err := h.alertService.List(c.Request.Context(), principal, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": alerts}))
}

func (h *Handler) getAlert(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	alert, err := h.alertService.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(alert))
}

func (h *Handler) acknowledgeAlert(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Note string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.alertService.Acknowledge(c.Request.Context(), principal, id, req.Note); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": string(model.AlertStatusAcknowledged)}))
}

func (h *Handler) resolveAlert(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Note   string `json:"note"`
		Action string `json:"action"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.alertService.Resolve(c.Request.Context(), principal, id, req.Note, req.Action); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": string(model.AlertStatusResolved)}))
}

func (h *Handler) dismissAlert(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.alertService.Dismiss(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": string(model.AlertStatusDismissed)}))
}

func (h *Handler) expireDueAlerts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	count, err := h.alertService.ExpireDue(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"expired": count}))
}

func (h *Handler) alertHistory(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	entries, err := h.alertService.History(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": entries}))
}

func parseAlertQuery(c *gin.Context) (repository.AlertFilter, error) {
	var filter repository.AlertFilter

	if statusParam := c.Query("status"); statusParam != "" {
		for _, val := range splitCSV(statusParam) {
			filter.Statuses = append(filter.Statuses, model.AlertStatus(strings.ToLower(val)))
		}
	}
	if typeParam := c.Query("type"); typeParam != "" {
		for _, val := range splitCSV(typeParam) {
			filter.Types = append(filter.Types, model.AlertType(strings.ToLower(val)))
		}
	}
	if severityParam := c.Query("severity"); severityParam != "" {
		for _, val := range splitCSV(severityParam) {
			filter.Severities = append(filter.Severities, model.AlertSeverity(strings.ToLower(val)))
		}
	}

	var err error
	if filter.VehicleID, err = parseUUIDQuery(c, "vehicle_id"); err != nil {
		return filter, err
	}
	if filter.DriverID, err = parseUUIDQuery(c, "driver_id"); err != nil {
		return filter, err
	}
	if filter.TripID, err = parseUUIDQuery(c, "trip_id"); err != nil {
		return filter, err
	}

	filter.Limit, filter.Offset = parsePagination(c)
	return filter, nil
}

func parseOptionalUUID(raw *string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, err
	}
	return &id, nil
}
