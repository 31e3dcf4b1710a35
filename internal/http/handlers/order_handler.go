// README: Order handlers: creation, lookup, listings, status updates.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"breeze/internal/http/middleware"
	"breeze/internal/modules/account"
	"breeze/internal/modules/order"
	"breeze/internal/types"
)

type OrderHandler struct {
	orders *order.Service
}

func NewOrderHandler(svc *order.Service) *OrderHandler {
	return &OrderHandler{orders: svc}
}

type createOrderReq struct {
	OrderItems      []order.LineItem     `json:"orderItems"`
	ShippingAddress types.Address        `json:"shippingAddress"`
	PaymentMethod   string               `json:"paymentMethod"`
	TotalPrice      types.Money          `json:"totalPrice"`
	PaymentResult   *order.PaymentResult `json:"paymentResult"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	o, err := h.orders.Create(c.Request.Context(), order.CreateCommand{
		UserID:          middleware.CallerID(c),
		Items:           req.OrderItems,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		TotalPrice:      req.TotalPrice,
		PaymentResult:   req.PaymentResult,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, o)
}

// Get returns an order to its owner, its assigned rider, or an admin.
func (h *OrderHandler) Get(c *gin.Context) {
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
	if !mayViewOrder(c, o) {
		writeError(c, http.StatusForbidden, "forbidden")
		return
	}
	writeJSON(c, http.StatusOK, o)
}

func (h *OrderHandler) ListAll(c *gin.Context) {
	orders, err := h.orders.ListAll(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, orders)
}

func (h *OrderHandler) ListMine(c *gin.Context) {
	orders, err := h.orders.ListMine(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, orders)
}

type updateStatusReq struct {
	Status  string `json:"status"`
	RiderID string `json:"riderId"`
}

// UpdateStatus applies a status transition. Admin-only; the rider travels as
// request data, not as an elevated caller.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing order id")
		return
	}
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		writeError(c, http.StatusBadRequest, "missing status")
		return
	}

	cmd := order.TransitionCommand{
		OrderID:   types.ID(id),
		To:        order.Status(req.Status),
		ActorID:   middleware.CallerID(c),
		ActorType: middleware.CallerRole(c),
	}
	if req.RiderID != "" {
		rid := types.ID(req.RiderID)
		cmd.RiderID = &rid
	}

	o, err := h.orders.ApplyTransition(c.Request.Context(), cmd)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, o)
}

func mayViewOrder(c *gin.Context, o *order.Order) bool {
	callerID := middleware.CallerID(c)
	switch {
	case middleware.CallerRole(c) == string(account.RoleAdmin):
		return true
	case o.UserID == callerID:
		return true
	case o.RiderID != nil && *o.RiderID == callerID:
		return true
	}
	return false
}
