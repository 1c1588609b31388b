package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fleet-service/internal/service"
)

type Handler struct {
	sessionService     *service.SessionService
	tripService        *service.TripService
	maintenanceService *service.MaintenanceService
	alertService       *service.AlertService
	fleetService       *service.FleetService
	actorService       *service.ActorService
	log                zerolog.Logger
}

func NewHandler(
	sessionService *service.SessionService,
	tripService *service.TripService,
	maintenanceService *service.MaintenanceService,
	alertService *service.AlertService,
	fleetService *service.FleetService,
	actorService *service.ActorService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		sessionService:     sessionService,
		tripService:        tripService,
		maintenanceService: maintenanceService,
		alertService:       alertService,
		fleetService:       fleetService,
		actorService:       actorService,
		log:                log,
	}
}

// handleError is the single place service failures become HTTP statuses.
func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAuthenticationRequired),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrTokenInvalid),
		errors.Is(err, service.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, errorResponse(err.Error()))
	case errors.Is(err, service.ErrAccountLocked):
		c.JSON(http.StatusLocked, errorResponse(err.Error()))
	case errors.Is(err, service.ErrAccountInactive),
		errors.Is(err, service.ErrAccessDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrResourceUnavailable),
		errors.Is(err, service.ErrAlreadyAcknowledged),
		errors.Is(err, service.ErrAlreadyResolved):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, errorResponse(err.Error()))
	case errors.Is(err, service.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

func parseUUIDQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseTimeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func parsePagination(c *gin.Context) (limit, offset int) {
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	if raw := strings.TrimSpace(c.Query("offset")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			offset = v
		}
	}
	return limit, offset
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

type responseEnvelope struct {
	Data interface{} `json:"data"`
}

func successResponse(data interface{}) responseEnvelope {
	return responseEnvelope{Data: data}
}

func errorResponse(msg string) gin.H {
	return gin.H{"error": msg}
}
