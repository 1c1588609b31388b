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

func (h *Handler) createTrip(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req struct {
		VehicleID          string     `json:"vehicle_id" binding:"required"`
		DriverID           string     `json:"driver_id" binding:"required"`
		OriginAddress      string     `json:"origin_address"`
		DestinationAddress string     `json:"destination_address"`
		CargoDescription   string     `json:"cargo_description"`
		ScheduledStart     *time.Time `json:"scheduled_start"`
		ScheduledEnd       *time.Time `json:"scheduled_end"`
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
	driverID, err := uuid.Parse(strings.TrimSpace(req.DriverID))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid driver_id"))
		return
	}

	record, err := h.tripService.Create(c.Request.Context(), principal, service.CreateTripInput{
		VehicleID:          vehicleID,
		DriverID:           driverID,
		OriginAddress:      req.OriginAddress,
		DestinationAddress: req.DestinationAddress,
		CargoDescription:   req.CargoDescription,
		ScheduledStart:     req.ScheduledStart,
		ScheduledEnd:       req.ScheduledEnd,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(record))
}

func (h *Handler) listTrips(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	filter, err := parseTripQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	records, err := h.tripService.List(c.Request.Context(), principal, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": records}))
}

func (h *Handler) getTrip(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	record, err := h.tripService.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) assignTrip(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.tripService.Assign(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": string(model.TripStatusAssigned)}))
}

func (h *Handler) startTrip(c *gin.Context) {
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
		OdometerStart int64   `json:"odometer_start"`
		FuelStart     float64 `json:"fuel_start"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.tripService.Start(c.Request.Context(), principal, id, req.OdometerStart, req.FuelStart); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": string(model.TripStatusInProgress)}))
}

func (h *Handler) completeTrip(c *gin.Context) {
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
		OdometerEnd       int64   `json:"odometer_end"`
		FuelEnd           float64 `json:"fuel_end"`
		CompletionDetails string  `json:"completion_details"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.tripService.Complete(c.Request.Context(), principal, id, req.OdometerEnd, req.FuelEnd, req.CompletionDetails); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": string(model.TripStatusCompleted)}))
}

func (h *Handler) cancelTrip(c *gin.Context) {
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

	if err := h.tripService.Cancel(c.Request.Context(), principal, id, req.Reason); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": string(model.TripStatusCancelled)}))
}

func (h *Handler) markTripDelayed(c *gin.Context) {
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
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.tripService.MarkDelayed(c.Request.Context(), principal, id, req.Reason); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"delayed": true}))
}

func (h *Handler) clearTripDelay(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.tripService.ClearDelay(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"delayed": false}))
}

func (h *Handler) tripHistory(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	entries, err := h.tripService.History(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": entries}))
}

func parseTripQuery(c *gin.Context) (repository.TripFilter, error) {
	var filter repository.TripFilter

	if statusParam := c.Query("status"); statusParam != "" {
		for _, val := range splitCSV(statusParam) {
			filter.Statuses = append(filter.Statuses, model.TripStatus(strings.ToLower(val)))
		}
	}

	var err error
	if filter.VehicleID, err = parseUUIDQuery(c, "vehicle_id"); err != nil {
		return filter, err
	}
	if filter.DriverID, err = parseUUIDQuery(c, "driver_id"); err != nil {
		return filter, err
	}
	if filter.DateFrom, err = parseTimeQuery(c, "date_from"); err != nil {
		return filter, err
	}
	if filter.DateTo, err = parseTimeQuery(c, "date_to"); err != nil {
		return filter, err
	}

	if raw := strings.TrimSpace(c.Query("delayed")); raw != "" {
		delayed, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, err
		}
		filter.Delayed = &delayed
	}

	filter.Limit, filter.Offset = parsePagination(c)
	return filter, nil
}
