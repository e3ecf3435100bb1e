package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campuspulse/events-server/internal/auth"
	"github.com/campuspulse/events-server/internal/config"
	"github.com/campuspulse/events-server/internal/models"
	"github.com/campuspulse/events-server/internal/service"
)

// Handler wires the service layer to the HTTP transport
type Handler struct {
	svc    service.Service
	tokens *auth.TokenManager
	policy config.PolicyConfig
	logger *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(svc service.Service, tokens *auth.TokenManager, policy config.PolicyConfig, logger *zap.Logger) *Handler {
	return &Handler{
		svc:    svc,
		tokens: tokens,
		policy: policy,
		logger: logger,
	}
}

// SetupRoutes registers all routes on the router
func (h *Handler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")

	// Public routes
	api.GET("/events", h.ListEvents)
	api.GET("/events/:id", h.GetEvent)

	authRoutes := api.Group("/auth")
	authRoutes.POST("/signup", h.SignUp)
	authRoutes.POST("/login", h.Login)
	authRoutes.POST("/google", h.GoogleLogin)

	// Authenticated routes
	authed := api.Group("", h.Authenticate())
	authed.POST("/events", h.CreateEvent)
	authed.PATCH("/events/:id", h.UpdateEvent)
	authed.DELETE("/events/:id", h.DeleteEvent)
	authed.PUT("/events/:id/favorite", h.FavoriteEvent)
	authed.DELETE("/events/:id/favorite", h.UnfavoriteEvent)
	authed.GET("/me", h.Me)
	authed.GET("/me/favorites", h.ListFavorites)

	// Admin routes
	admin := authed.Group("/admin", h.RequireAdmin())
	admin.GET("/accounts", h.ListAccounts)
	admin.POST("/accounts/:id/approve-host", h.ApproveHost)
	admin.POST("/accounts/:id/revoke-host", h.RevokeHost)
}

// respondError maps service errors onto HTTP responses
func (h *Handler) respondError(c *gin.Context, err error) {
	var status int
	var code string

	switch {
	case errors.Is(err, service.ErrValidation):
		status, code = http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, service.ErrUnauthenticated):
		abortUnauthorized(c)
		return
	case errors.Is(err, service.ErrForbidden):
		status, code = http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, service.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, service.ErrStateConflict):
		status, code = http.StatusConflict, "STATE_CONFLICT"
	case errors.Is(err, service.ErrEmailTaken):
		status, code = http.StatusConflict, "CONFLICT"
	case errors.Is(err, service.ErrUnavailable):
		status, code = http.StatusServiceUnavailable, "UNAVAILABLE"
	default:
		h.logger.Error("internal error", zap.Error(err))
		status, code = http.StatusInternalServerError, "INTERNAL_ERROR"
	}

	c.JSON(status, models.ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: err.Error(),
	})
}

func (h *Handler) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Status:  "error",
		Code:    "VALIDATION_ERROR",
		Message: message,
	})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Status:  "error",
			Code:    "NOT_FOUND",
			Message: "not found",
		})
		return 0, false
	}
	return id, true
}

// Authentication handlers
func (h *Handler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	resp, err := h.svc.SignUp(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GoogleLogin(c *gin.Context) {
	var req models.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	resp, err := h.svc.GoogleLogin(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Me(c *gin.Context) {
	account := currentAccount(c)
	c.JSON(http.StatusOK, h.svc.Profile(account))
}

// Event handlers
func (h *Handler) ListEvents(c *gin.Context) {
	query, ok := h.parseEventQuery(c)
	if !ok {
		return
	}

	events, err := h.svc.QueryEvents(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.EventListResponse{Status: "success", Events: events})
}

func (h *Handler) parseEventQuery(c *gin.Context) (models.EventQuery, bool) {
	query := models.EventQuery{
		Text: c.Query("q"),
		Tag:  c.Query("tag"),
	}

	if raw := c.Query("start_from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.badRequest(c, "start_from must be RFC 3339")
			return query, false
		}
		query.StartFrom = &t
	}

	if raw := c.Query("start_to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.badRequest(c, "start_to must be RFC 3339")
			return query, false
		}
		query.StartTo = &t
	}

	if raw := c.Query("include_past"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.badRequest(c, "include_past must be a boolean")
			return query, false
		}
		query.IncludePast = v
	}

	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			h.badRequest(c, "limit must be a positive integer")
			return query, false
		}
		query.Limit = v
	}

	return query, true
}

func (h *Handler) GetEvent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	event, err := h.svc.GetEvent(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *Handler) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	event, err := h.svc.CreateEvent(c.Request.Context(), currentAccount(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (h *Handler) UpdateEvent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	event, err := h.svc.UpdateEvent(c.Request.Context(), currentAccount(c), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *Handler) DeleteEvent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteEvent(c.Request.Context(), currentAccount(c), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Favorite handlers
func (h *Handler) FavoriteEvent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.FavoriteEvent(c.Request.Context(), currentAccount(c), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) UnfavoriteEvent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.UnfavoriteEvent(c.Request.Context(), currentAccount(c), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListFavorites(c *gin.Context) {
	events, err := h.svc.ListFavorites(c.Request.Context(), currentAccount(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.EventListResponse{Status: "success", Events: events})
}

// Admin handlers
func (h *Handler) ListAccounts(c *gin.Context) {
	hostOnly := false
	if raw := c.Query("host_only"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.badRequest(c, "host_only must be a boolean")
			return
		}
		hostOnly = v
	}

	accounts, err := h.svc.ListAccounts(c.Request.Context(), hostOnly)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AccountListResponse{Status: "success", Accounts: accounts})
}

func (h *Handler) ApproveHost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	view, err := h.svc.ApproveHost(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handler) RevokeHost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	view, err := h.svc.RevokeHost(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
