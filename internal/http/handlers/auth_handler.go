// README: Google login and profile handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"breeze/internal/auth"
	"breeze/internal/http/middleware"
	"breeze/internal/modules/account"
)

type AuthHandler struct {
	accounts *account.Service
	session  auth.Config
}

func NewAuthHandler(accounts *account.Service, session auth.Config) *AuthHandler {
	return &AuthHandler{accounts: accounts, session: session}
}

type googleLoginReq struct {
	TokenID string `json:"tokenId"`
}

type loginResponse struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

// GoogleLogin verifies a Google ID token and returns the resolved account with
// a freshly minted session token.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req googleLoginReq
	if err := c.ShouldBindJSON(&req); err != nil || req.TokenID == "" {
		writeError(c, http.StatusBadRequest, "missing tokenId")
		return
	}

	a, err := h.accounts.Login(c.Request.Context(), req.TokenID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	token, err := auth.Generate(h.session, a.ID, a.Email, string(a.Role))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, loginResponse{
		ID:    string(a.ID),
		Name:  a.Name,
		Email: a.Email,
		Role:  string(a.Role),
		Token: token,
	})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	a, err := h.accounts.Get(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, a)
}
