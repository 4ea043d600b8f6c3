package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/skate-ticket-service/internal/config"
	"github.com/iliyamo/skate-ticket-service/internal/model"
	"github.com/iliyamo/skate-ticket-service/internal/repository"
	"github.com/iliyamo/skate-ticket-service/internal/utils"
)

// InvitationHandler manages sharpener onboarding.  Accounts are created
// only by accepting a single-use, time-limited invitation issued by an
// existing sharpener; there is no open registration endpoint.
type InvitationHandler struct {
	Cfg        config.Config
	Invites    *repository.InvitationRepo
	Sharpeners *repository.SharpenerRepo
	Auth       *AuthHandler
}

func NewInvitationHandler(cfg config.Config, inv *repository.InvitationRepo, s *repository.SharpenerRepo, auth *AuthHandler) *InvitationHandler {
	return &InvitationHandler{Cfg: cfg, Invites: inv, Sharpeners: s, Auth: auth}
}

type createInviteReq struct {
	Email string `json:"email"`
}

type acceptInviteReq struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Create issues an invitation for an email address (protected route).  The
// token is returned to the caller, who passes it on to the invitee.
func (h *InvitationHandler) Create(c echo.Context) error {
	var req createInviteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	taken, err := h.Sharpeners.EmailExists(ctx, email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if taken {
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already has an account"})
	}

	token, err := utils.RandomHex(32)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	inv := model.Invitation{
		Email:     email,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(time.Duration(h.Cfg.InviteTTLDays) * 24 * time.Hour),
	}
	if err := h.Invites.Create(ctx, &inv); err != nil {
		if errors.Is(err, repository.ErrInvitationExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "invitation already sent"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create invitation failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"token":      inv.Token,
		"email":      inv.Email,
		"expires_at": inv.ExpiresAt,
	})
}

// Accept consumes an invitation and creates the sharpener account, logging
// it in immediately.  A concurrent double accept is stopped by the unique
// email index on sharpeners before the invitation is consumed twice.
func (h *InvitationHandler) Accept(c echo.Context) error {
	var req acceptInviteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Username = strings.TrimSpace(req.Username)
	if req.Name == "" || req.Username == "" || len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, username and a password of at least 8 characters are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	inv, err := h.Invites.GetByToken(ctx, c.Param("token"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invitation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if repository.Expired(inv, time.Now()) {
		return c.JSON(http.StatusGone, echo.Map{"error": "invitation expired or already used"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}
	s := model.Sharpener{
		Name:         req.Name,
		Email:        inv.Email,
		Phone:        utils.NormalizePhone(req.Phone),
		Username:     req.Username,
		PasswordHash: hash,
	}
	id, err := h.Sharpeners.Create(ctx, &s)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already has an account"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create account failed"})
	}
	if err := h.Invites.MarkUsed(ctx, inv.ID); err != nil {
		// The account exists either way; a lost race on the used flag does
		// not undo it.
		if !errors.Is(err, repository.ErrInvalidTransition) {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "consume invitation failed"})
		}
	}

	access, refresh, err := h.Auth.issuePair(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusCreated, authResp{
		Sharpener: sharpenerPart{ID: id, Name: s.Name, Username: s.Username, Role: RoleSharpener},
		Access:    tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh:   tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}
