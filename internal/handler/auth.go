package handler

import (
	"context"      // provides context with cancellation for DB calls
	"database/sql" // SQL database interactions
	"net/http"     // HTTP status codes and primitives
	"strings"      // string manipulation utilities
	"time"         // timeouts for DB calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/skate-ticket-service/internal/config"     // app configuration
	"github.com/iliyamo/skate-ticket-service/internal/middleware" // context identity helpers
	"github.com/iliyamo/skate-ticket-service/internal/repository" // DB repositories
	"github.com/iliyamo/skate-ticket-service/internal/utils"      // helper functions (hashing, token issuing)
)

// RoleSharpener is the single staff role; every account created through an
// invitation carries it.
const RoleSharpener = "SHARPENER"

// AuthHandler bundles dependencies for auth endpoints.  There is no open
// registration: sharpener accounts only come into existence through
// invitation acceptance (see InvitationHandler).
type AuthHandler struct {
	Cfg        config.Config
	Sharpeners *repository.SharpenerRepo
	Tokens     *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, s *repository.SharpenerRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Sharpeners: s, Tokens: t}
}

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type sharpenerPart struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
type authResp struct {
	Sharpener sharpenerPart `json:"sharpener"`
	Access    tokenPart     `json:"access"`
	Refresh   tokenPart     `json:"refresh"`
}

// issuePair creates and persists a fresh access/refresh pair for the
// sharpener.  Shared by login, refresh and invitation acceptance.
func (h *AuthHandler) issuePair(ctx context.Context, id uint64) (utils.AccessToken, utils.RefreshToken, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, id, RoleSharpener, h.Cfg.AccessTTLMin)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, id, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	return access, refresh, nil
}

// Login: verify credentials and return a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Sharpeners.GetByUsername(ctx, req.Username)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !s.IsActive || !utils.VerifyPassword(s.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, refresh, err := h.issuePair(ctx, s.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, authResp{
		Sharpener: sharpenerPart{ID: s.ID, Name: s.Name, Username: s.Username, Role: RoleSharpener},
		Access:    tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh:   tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}

// Refresh: validate by hash, revoke the old token and issue a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	s, err := h.Sharpeners.GetByID(ctx, id)
	if err != nil || !s.IsActive {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}

	access, refresh, err := h.issuePair(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, authResp{
		Sharpener: sharpenerPart{ID: s.ID, Name: s.Name, Username: s.Username, Role: RoleSharpener},
		Access:    tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh:   tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}

// RefreshAccess: validate a refresh token and return a new access token
// WITHOUT rotating the refresh token.  Lets the counter tablet renew its
// short-lived access token all day on one session.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	s, err := h.Sharpeners.GetByID(ctx, id)
	if err != nil || !s.IsActive {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, id, RoleSharpener, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes sessions for the authenticated sharpener (protected
// route).  With a refresh_token in the body only that session dies;
// without one, every session does.
func (h *AuthHandler) Logout(c echo.Context) error {
	id := middleware.SharpenerID(c)
	if id == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req refreshReq
	_ = c.Bind(&req) // invalid JSON just means no specific token
	raw := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if raw != "" {
		if err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw)); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.NoContent(http.StatusNoContent)
	}
	if err := h.Tokens.RevokeAllForSharpener(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me: return the authenticated sharpener's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Sharpeners.GetByID(ctx, middleware.SharpenerID(c))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, sharpenerPart{ID: s.ID, Name: s.Name, Username: s.Username, Role: RoleSharpener})
}
