package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/classroom-seating/internal/config"
	"github.com/iliyamo/classroom-seating/internal/middleware"
	"github.com/iliyamo/classroom-seating/internal/utils"
)

// AuthHandler logs the teacher in.  There is a single account configured
// through ADMIN_USER and ADMIN_PASSWORD_HASH.
type AuthHandler struct {
	cfg config.Config
	log *zap.Logger
}

func NewAuthHandler(cfg config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{cfg: cfg, log: log.Named("auth")}
}

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResp struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Login exchanges the teacher credentials for an access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	userOK := strings.EqualFold(strings.TrimSpace(req.Username), h.cfg.AdminUser)
	// always run bcrypt so timing does not reveal the user name
	passOK := utils.VerifyPassword(h.cfg.AdminPasswordHash, req.Password)
	if !userOK || !passOK {
		h.log.Warn("login rejected", zap.String("username", req.Username), zap.String("ip", c.RealIP()))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	tok, err := utils.NewAccessToken(h.cfg.JWTSecret, h.cfg.AdminUser, utils.RoleTeacher, time.Duration(h.cfg.AccessTTLMin)*time.Minute)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, authResp{AccessToken: tok.Token, TokenType: "Bearer", ExpiresAt: tok.Exp})
}

// Me echoes the authenticated identity.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"user": middleware.CurrentUserID(c), "role": c.Get("role")})
}
