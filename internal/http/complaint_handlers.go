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

func (h *Handler) submitComplaint(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req struct {
		locationPayload
		UtilityTypeID string `json:"utility_type_id" binding:"required"`
		Title         string `json:"title"`
		Description   string `json:"description"`
		Priority      string `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	typeID, err := uuid.Parse(strings.TrimSpace(req.UtilityTypeID))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid utility_type_id"))
		return
	}

	record, err := h.complaints.Submit(c.Request.Context(), principal, service.SubmitComplaintInput{
		UtilityTypeID: typeID,
		Title:         req.Title,
		Description:   req.Description,
		Priority:      model.Priority(strings.ToLower(strings.TrimSpace(req.Priority))),
		Location:      req.toModel(),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(record))
}

func (h *Handler) listComplaints(c *gin.Context) {
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

	records, err := h.complaints.List(c.Request.Context(), principal, opts)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": records}))
}

func (h *Handler) getComplaint(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := parseID(c, "complaint")
	if !ok {
		return
	}

	record, err := h.complaints.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) getComplaintByCode(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	record, err := h.complaints.GetByCode(c.Request.Context(), principal, code)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) assignComplaint(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := parseID(c, "complaint")
	if !ok {
		return
	}

	record, err := h.complaints.Assign(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.log.Info().Str("complaint", record.Complaint.Code).Str("officer", principal.Username).Msg("complaint assigned")

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) updateComplaintStatus(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := parseID(c, "complaint")
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

	record, err := h.complaints.AdvanceStatus(c.Request.Context(), principal, id, service.AdvanceComplaintInput{
		Status: model.RequestStatus(strings.ToLower(strings.TrimSpace(req.Status))),
		Notes:  req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) escalateComplaint(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := parseID(c, "complaint")
	if !ok {
		return
	}

	escalated, err := h.complaints.Escalate(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	if escalated {
		h.log.Info().Str("complaint_id", id.String()).Str("officer", principal.Username).Msg("complaint escalated")
	} else {
		h.log.Warn().Str("complaint_id", id.String()).Msg("escalation skipped, no government authority account")
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"escalated": escalated}))
}

func (h *Handler) rateComplaint(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := parseID(c, "complaint")
	if !ok {
		return
	}

	var req struct {
		Rating int `json:"rating" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.complaints.Rate(c.Request.Context(), principal, id, req.Rating); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": "rated"}))
}
