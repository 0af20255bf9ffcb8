package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"service-portal/internal/http/middleware"
	"service-portal/internal/model"
	"service-portal/internal/service"
)

type locationPayload struct {
	Address  string   `json:"address"`
	Landmark string   `json:"landmark"`
	Lat      *float64 `json:"location_lat"`
	Lng      *float64 `json:"location_lng"`
}

func (p locationPayload) toModel() model.Location {
	return model.Location{Lat: p.Lat, Lng: p.Lng, Address: p.Address, Landmark: p.Landmark}
}

func (h *Handler) submitEmergency(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req struct {
		locationPayload
		EmergencyTypeID string `json:"emergency_type_id" binding:"required"`
		Priority        string `json:"priority"`
		Description     string `json:"description"`
		ContactNumber   string `json:"contact_number"`
		AdditionalInfo  string `json:"additional_info"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	typeID, err := uuid.Parse(strings.TrimSpace(req.EmergencyTypeID))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid emergency_type_id"))
		return
	}

	record, err := h.emergencies.Submit(c.Request.Context(), principal, service.SubmitEmergencyInput{
		EmergencyTypeID: typeID,
		Priority:        model.Priority(strings.ToLower(strings.TrimSpace(req.Priority))),
		Location:        req.toModel(),
		Description:     req.Description,
		ContactNumber:   req.ContactNumber,
		AdditionalInfo:  req.AdditionalInfo,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(record))
}

func (h *Handler) listEmergencies(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	opts, err := parseListQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	records, err := h.emergencies.List(c.Request.Context(), principal, opts)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": records}))
}

func (h *Handler) getEmergency(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := parseID(c, "emergency")
	if !ok {
		return
	}

	request, err := h.emergencies.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(request))
}

func (h *Handler) assignVehicle(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := parseID(c, "emergency")
	if !ok {
		return
	}

	var req struct {
		VehicleID string `json:"vehicle_id" binding:"required"`
		Notes     string `json:"notes"`
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

	dispatch, err := h.emergencies.Assign(c.Request.Context(), principal, id, service.AssignVehicleInput{
		VehicleID: vehicleID,
		Notes:     req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.log.Info().
		Str("emergency_id", id.String()).
		Str("dispatch_id", dispatch.ID.String()).
		Str("vehicle_id", vehicleID.String()).
		Str("operator", principal.Username).
		Msg("vehicle dispatched")

	c.JSON(http.StatusCreated, successResponse(dispatch))
}

func (h *Handler) cancelEmergency(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := parseID(c, "emergency")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
	}

	request, err := h.emergencies.Cancel(c.Request.Context(), principal, id, req.Reason)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.log.Info().Str("emergency_id", id.String()).Str("by", principal.Username).Msg("emergency cancelled")

	c.JSON(http.StatusOK, successResponse(request))
}

func (h *Handler) updateDispatchStatus(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := parseID(c, "dispatch")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	status := model.DispatchStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	request, err := h.emergencies.AdvanceDispatch(c.Request.Context(), principal, id, service.AdvanceDispatchInput{
		Status: status,
		Notes:  req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	event := h.log.Info().
		Str("dispatch_id", id.String()).
		Str("dispatch_status", string(status)).
		Str("emergency_status", string(request.Status))
	if status.Finished() {
		event.Msg("dispatch finished, vehicle released")
	} else {
		event.Msg("dispatch advanced")
	}

	c.JSON(http.StatusOK, successResponse(request))
}

func (h *Handler) emergencyMap(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	fc, err := h.emergencies.ActiveMap(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, fc)
}
