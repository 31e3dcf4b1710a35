// README: Rider-facing handlers: assigned orders and delivery routes.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"breeze/internal/http/middleware"
	"breeze/internal/maps"
	"breeze/internal/modules/order"
	"breeze/internal/types"
)

type RiderHandler struct {
	orders *order.Service
	routes *maps.RouteService // nil when no API key is configured
	origin string
}

func NewRiderHandler(orders *order.Service, routes *maps.RouteService, warehouseAddr string) *RiderHandler {
	return &RiderHandler{orders: orders, routes: routes, origin: warehouseAddr}
}

// ListAssigned returns the caller's assigned orders, newest first.
func (h *RiderHandler) ListAssigned(c *gin.Context) {
	orders, err := h.orders.ListByRider(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, orders)
}

// DeliveryRoute estimates the drive to an assigned order's shipping address.
func (h *RiderHandler) DeliveryRoute(c *gin.Context) {
	if h.routes == nil {
		writeError(c, http.StatusServiceUnavailable, "route service not configured")
		return
	}
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing order id")
		return
	}

	o, err := h.orders.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if o.RiderID == nil || *o.RiderID != middleware.CallerID(c) {
		writeError(c, http.StatusForbidden, "order not assigned to caller")
		return
	}

	addr := o.ShippingAddress
	destination := addr.Street + ", " + addr.City + ", " + addr.State + " " + addr.ZipCode + ", " + addr.Country
	duration, distance, err := h.routes.DeliveryEstimate(c.Request.Context(), h.origin, destination)
	if err != nil {
		writeError(c, http.StatusBadGateway, "route lookup failed")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"durationSeconds": int(duration.Seconds()),
		"distance":        distance,
	})
}
