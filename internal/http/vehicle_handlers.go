package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"service-portal/internal/http/middleware"
	"service-portal/internal/model"
	"service-portal/internal/service"
)

func (h *Handler) listVehicles(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var opts service.ListVehiclesOptions
	var err error
	if opts.AvailableOnly, err = queryBool(c, "available"); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	if typeParam := c.Query("type"); typeParam != "" {
		for _, val := range splitCSV(typeParam) {
			opts.Types = append(opts.Types, model.VehicleType(strings.ToLower(val)))
		}
	}
	if opts.Limit, opts.Offset, err = queryPaging(c); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	vehicles, err := h.vehicles.List(c.Request.Context(), principal, opts)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": vehicles}))
}

func (h *Handler) createVehicle(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req struct {
		VehicleType     string `json:"vehicle_type" binding:"required"`
		VehicleNumber   string `json:"vehicle_number" binding:"required"`
		DriverName      string `json:"driver_name" binding:"required"`
		DriverContact   string `json:"driver_contact"`
		CurrentLocation string `json:"current_location"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	vehicle, err := h.vehicles.Create(c.Request.Context(), principal, service.VehicleInput{
		VehicleType:     model.VehicleType(strings.ToLower(strings.TrimSpace(req.VehicleType))),
		VehicleNumber:   req.VehicleNumber,
		DriverName:      req.DriverName,
		DriverContact:   req.DriverContact,
		CurrentLocation: req.CurrentLocation,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(vehicle))
}

func (h *Handler) updateVehicle(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := parseID(c, "vehicle")
	if !ok {
		return
	}

	var req struct {
		VehicleType     *string `json:"vehicle_type"`
		VehicleNumber   *string `json:"vehicle_number"`
		DriverName      *string `json:"driver_name"`
		DriverContact   *string `json:"driver_contact"`
		CurrentLocation *string `json:"current_location"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	input := service.VehicleUpdate{
		VehicleNumber:   req.VehicleNumber,
		DriverName:      req.DriverName,
		DriverContact:   req.DriverContact,
		CurrentLocation: req.CurrentLocation,
	}
	if req.VehicleType != nil {
		vt := model.VehicleType(strings.ToLower(strings.TrimSpace(*req.VehicleType)))
		input.VehicleType = &vt
	}

	vehicle, err := h.vehicles.Update(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(vehicle))
}

func (h *Handler) deleteVehicle(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := parseID(c, "vehicle")
	if !ok {
		return
	}

	if err := h.vehicles.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": "deleted"}))
}
