// README: User administration handlers: listing, profiles, allow-list.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"breeze/internal/http/middleware"
	"breeze/internal/modules/account"
	"breeze/internal/types"
)

type UserHandler struct {
	accounts *account.Service
}

func NewUserHandler(accounts *account.Service) *UserHandler {
	return &UserHandler{accounts: accounts}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.accounts.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, users)
}

func (h *UserHandler) ListRiders(c *gin.Context) {
	riders, err := h.accounts.ListByRole(c.Request.Context(), account.RoleRider)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, riders)
}

type updateProfileReq struct {
	Name    string         `json:"name"`
	Address *types.Address `json:"address"`
	Phone   string         `json:"phone"`
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	a, err := h.accounts.UpdateProfile(c.Request.Context(), middleware.CallerID(c), account.UpdateProfileCommand{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, a)
}

type addApprovedEmailReq struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *UserHandler) AddApprovedEmail(c *gin.Context) {
	var req addApprovedEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	e, err := h.accounts.AddApprovedEmail(c.Request.Context(), req.Email, account.Role(req.Role))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, e)
}

func (h *UserHandler) ListApprovedEmails(c *gin.Context) {
	emails, err := h.accounts.ListApprovedEmails(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, emails)
}

func (h *UserHandler) DeleteApprovedEmail(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing id")
		return
	}
	if err := h.accounts.DeleteApprovedEmail(c.Request.Context(), types.ID(id)); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"message": "approved email removed"})
}
