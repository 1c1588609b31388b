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

func (h *Handler) createVehicle(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req struct {
		PlateNumber string `json:"plate_number" binding:"required"`
		VIN         string `json:"vin"`
		Brand       string `json:"brand"`
		Model       string `json:"model"`
		Year        int    `json:"year"`
		OdometerKm  int64  `json:"odometer_km"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	vehicle, err := h.fleetService.CreateVehicle(c.Request.Context(), principal, service.CreateVehicleInput{
		PlateNumber: req.PlateNumber,
		VIN:         req.VIN,
		Brand:       req.Brand,
		Model:       req.Model,
		Year:        req.Year,
		OdometerKm:  req.OdometerKm,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(vehicle))
}

func (h *Handler) listVehicles(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var filter repository.VehicleFilter
	if statusParam := c.Query("status"); statusParam != "" {
		for _, val := range splitCSV(statusParam) {
			filter.Statuses = append(filter.Statuses, model.VehicleStatus(strings.ToLower(val)))
		}
	}
	if availParam := c.Query("availability"); availParam != "" {
		for _, val := range splitCSV(availParam) {
			filter.Availabilities = append(filter.Availabilities, model.VehicleAvailability(strings.ToLower(val)))
		}
	}
	filter.Limit, filter.Offset = parsePagination(c)

	vehicles, err := h.fleetService.ListVehicles(c.Request.Context(), principal, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": vehicles}))
}

func (h *Handler) getVehicle(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	vehicle, err := h.fleetService.GetVehicle(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(vehicle))
}

func (h *Handler) updateVehicle(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse("empty update"))
		return
	}

	vehicle, err := h.fleetService.UpdateVehicle(c.Request.Context(), principal, id, fields)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(vehicle))
}

func (h *Handler) assignVehicleDriver(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	// driver_id null clears the assignment.
	var req struct {
		DriverID *string `json:"driver_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	var driverID *uuid.UUID
	if req.DriverID != nil {
		parsed, err := uuid.Parse(strings.TrimSpace(*req.DriverID))
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid driver_id"))
			return
		}
		driverID = &parsed
	}

	if err := h.fleetService.AssignDriver(c.Request.Context(), principal, id, driverID); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": "assigned"}))
}

func (h *Handler) createDriver(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req struct {
		FullName         string     `json:"full_name" binding:"required"`
		Phone            string     `json:"phone"`
		EmergencyContact string     `json:"emergency_contact"`
		LicenseNumber    string     `json:"license_number" binding:"required"`
		LicenseExpiry    *time.Time `json:"license_expiry"`
		Salary           int64      `json:"salary"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	driver, err := h.fleetService.CreateDriver(c.Request.Context(), principal, service.CreateDriverInput{
		FullName:         req.FullName,
		Phone:            req.Phone,
		EmergencyContact: req.EmergencyContact,
		LicenseNumber:    req.LicenseNumber,
		LicenseExpiry:    req.LicenseExpiry,
		Salary:           req.Salary,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(driver))
}

func (h *Handler) listDrivers(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var filter repository.DriverFilter
	if statusParam := c.Query("status"); statusParam != "" {
		for _, val := range splitCSV(statusParam) {
			filter.Statuses = append(filter.Statuses, model.DriverStatus(strings.ToLower(val)))
		}
	}
	if availParam := c.Query("availability"); availParam != "" {
		for _, val := range splitCSV(availParam) {
			filter.Availabilities = append(filter.Availabilities, model.DriverAvailability(strings.ToLower(val)))
		}
	}
	filter.Limit, filter.Offset = parsePagination(c)

	drivers, err := h.fleetService.ListDrivers(c.Request.Context(), principal, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": drivers}))
}

func (h *Handler) getDriver(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	driver, err := h.fleetService.GetDriver(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(driver))
}

func (h *Handler) updateDriver(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse("empty update"))
		return
	}

	driver, err := h.fleetService.UpdateDriver(c.Request.Context(), principal, id, fields)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(driver))
}
