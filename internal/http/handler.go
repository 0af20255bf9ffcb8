package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"service-portal/internal/model"
	"service-portal/internal/service"
)

type Services struct {
	Accounts    *service.AccountService
	Catalog     *service.CatalogService
	Emergencies *service.EmergencyService
	Complaints  *service.ComplaintService
	Vehicles    *service.VehicleService
	Dashboards  *service.DashboardService
	Reports     *service.ReportService

	// Ping reports whether the database is reachable; nil skips the check.
	Ping func(ctx context.Context) error
}

type Handler struct {
	accounts    *service.AccountService
	catalog     *service.CatalogService
	emergencies *service.EmergencyService
	complaints  *service.ComplaintService
	vehicles    *service.VehicleService
	dashboards  *service.DashboardService
	reports     *service.ReportService
	ping        func(ctx context.Context) error
	log         zerolog.Logger
}

func NewHandler(services Services, log zerolog.Logger) *Handler {
	return &Handler{
		accounts:    services.Accounts,
		catalog:     services.Catalog,
		emergencies: services.Emergencies,
		complaints:  services.Complaints,
		vehicles:    services.Vehicles,
		dashboards:  services.Dashboards,
		reports:     services.Reports,
		ping:        services.Ping,
		log:         log,
	}
}

func (h *Handler) healthz(c *gin.Context) {
	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			h.log.Error().Err(err).Msg("database ping failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) listEmergencyTypes(c *gin.Context) {
	types, err := h.catalog.EmergencyTypes(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"items": types}))
}

func (h *Handler) listUtilityTypes(c *gin.Context) {
	types, err := h.catalog.UtilityTypes(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"items": types}))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrResourceUnavailable),
		errors.Is(err, service.ErrAlreadyAssigned),
		errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInvalidTransition):
		status = http.StatusUnprocessableEntity
	default:
		h.log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.FullPath()).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}
	c.JSON(status, errorResponse(err.Error()))
}

func parseID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid "+what+" id"))
		return uuid.Nil, false
	}
	return id, true
}

// parseListQuery reads the shared listing parameters:
// status (csv), mine, unassigned, assigned_to_me, limit, offset.
func parseListQuery(c *gin.Context) (service.ListOptions, error) {
	var opts service.ListOptions

	if statusParam := c.Query("status"); statusParam != "" {
		for _, val := range splitCSV(statusParam) {
			opts.Statuses = append(opts.Statuses, model.RequestStatus(strings.ToLower(val)))
		}
	}

	var err error
	if opts.Mine, err = queryBool(c, "mine"); err != nil {
		return opts, err
	}
	if opts.Unassigned, err = queryBool(c, "unassigned"); err != nil {
		return opts, err
	}
	if opts.AssignedToMe, err = queryBool(c, "assigned_to_me"); err != nil {
		return opts, err
	}
	if opts.Limit, opts.Offset, err = queryPaging(c); err != nil {
		return opts, err
	}
	return opts, nil
}

func queryBool(c *gin.Context, key string) (bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New("invalid " + key)
	}
	return v, nil
}

func queryPaging(c *gin.Context) (int, int, error) {
	var limit, offset int
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return 0, 0, errors.New("invalid limit")
		}
		limit = v
	}
	if raw := strings.TrimSpace(c.Query("offset")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return 0, 0, errors.New("invalid offset")
		}
		offset = v
	}
	return limit, offset, nil
}

func queryTime(c *gin.Context, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		if day, dayErr := time.Parse("2006-01-02", raw); dayErr == nil {
			return &day, nil
		}
		return nil, errors.New("invalid " + key)
	}
	return &ts, nil
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
