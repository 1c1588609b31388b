package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fleet-service/internal/http/middleware"
	"fleet-service/internal/model"
	"fleet-service/internal/repository"
	"fleet-service/internal/service"
)

func (h *Handler) scheduleMaintenance(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req struct {
		VehicleID     string    `json:"vehicle_id" binding:"required"`
		Type          string    `json:"type" binding:"required"`
		Description   string    `json:"description"`
		ScheduledDate time.Time `json:"scheduled_date" binding:"required"`
		CostCents     int64     `json:"cost_cents"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	vehicleID, err := uuid.Parse(strings.TrimSpace(req.VehicleID))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle_id"))
		return
	}

	record, err := h.maintenanceService.Schedule(c.Request.Context(), principal, service.ScheduleMaintenanceInput{
		VehicleID:     vehicleID,
		Type:          model.MaintenanceType(strings.ToLower(strings.TrimSpace(req.Type))),
		Description:   req.Description,
		ScheduledDate: req.ScheduledDate,
		CostCents:     req.CostCents,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(record))
}

func (h *Handler) listMaintenance(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	filter, err := parseMaintenanceQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	records, err := h.maintenanceService.List(c.Request.Context(), principal, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": records}))
}

func (h *Handler) getMaintenance(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	record, err := h.maintenanceService.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) startMaintenance(c *gin.Context) {
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
		VehicleConditionBefore string `json:"vehicle_condition_before"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.maintenanceService.Start(c.Request.Context(), principal, id, req.VehicleConditionBefore); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": string(model.MaintenanceStatusInProgress)}))
}

func (h *Handler) completeMaintenance(c *gin.Context) {
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
		WorkPerformed         string `json:"work_performed"`
		Findings              string `json:"findings"`
		VehicleConditionAfter string `json:"vehicle_condition_after"`
		InspectionPassed      *bool  `json:"inspection_passed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	err := h.maintenanceService.Complete(c.Request.Context(), principal, id, service.CompleteMaintenanceInput{
		WorkPerformed:         req.WorkPerformed,
		Findings:              req.Findings,
		VehicleConditionAfter: req.VehicleConditionAfter,
		InspectionPassed:      req.InspectionPassed,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": string(model.MaintenanceStatusCompleted)}))
}

func (h *Handler) cancelMaintenance(c *gin.Context) {
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
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.maintenanceService.Cancel(c.Request.Context(), principal, id, req.Reason); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": string(model.MaintenanceStatusCancelled)}))
}

func (h *Handler) postponeMaintenance(c *gin.Context) {
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
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.maintenanceService.Postpone(c.Request.Context(), principal, id, req.Reason); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": string(model.MaintenanceStatusPostponed)}))
}

func (h *Handler) rescheduleMaintenance(c *gin.Context) {
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
		ScheduledDate time.Time `json:"scheduled_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.maintenanceService.Reschedule(c.Request.Context(), principal, id, req.ScheduledDate); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": string(model.MaintenanceStatusScheduled)}))
}

func (h *Handler) approveMaintenance(c *gin.Context) {
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
		Comments string `json:"comments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	approval, err := h.maintenanceService.Approve(c.Request.Context(), principal, id, req.Comments)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(approval))
}

func (h *Handler) maintenanceHistory(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	entries, err := h.maintenanceService.History(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": entries}))
}

func parseMaintenanceQuery(c *gin.Context) (repository.MaintenanceFilter, error) {
	var filter repository.MaintenanceFilter

	if statusParam := c.Query("status"); statusParam != "" {
		for _, val := range splitCSV(statusParam) {
			filter.Statuses = append(filter.Statuses, model.MaintenanceStatus(strings.ToLower(val)))
		}
	}
	if typeParam := c.Query("type"); typeParam != "" {
		for _, val := range splitCSV(typeParam) {
			filter.Types = append(filter.Types, model.MaintenanceType(strings.ToLower(val)))
		}
	}

	var err error
	if filter.VehicleID, err = parseUUIDQuery(c, "vehicle_id"); err != nil {
		return filter, err
	}

	if raw := strings.TrimSpace(c.Query("overdue")); raw != "" {
		overdue, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, err
		}
		filter.OverdueOnly = overdue
	}

	filter.Limit, filter.Offset = parsePagination(c)
	return filter, nil
}
