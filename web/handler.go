// Package web serves the OAuth2 verification site.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"smpverify/model"
	"smpverify/oauth"
	"smpverify/verify"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	serviceName            = "DonutSMP Discord Verification"
	internalTokenHeader    = "X-Internal-Token"
	defaultUpstreamTimeout = 10 * time.Second
)

// IdentityProvider runs the OAuth2 authorization code flow.
type IdentityProvider interface {
	AuthCodeURL(state, redirectURL string) string
	Exchange(ctx context.Context, code, redirectURL string) (*oauth.Identity, error)
}

// Verifier decides a web verification.
type Verifier interface {
	DecideOAuth(ctx context.Context, userID, username string, inCommunity bool) model.Verdict
}

// BanChecker looks up bans in the target community.
type BanChecker interface {
	GetBan(ctx context.Context, userID string) verify.BanResult
}

type Handler struct {
	cfg       model.Web
	community model.Community
	provider  IdentityProvider
	verifier  Verifier
	bans      BanChecker
	gatherer  prometheus.Gatherer
	limiter   *IPRateLimiter
	logger    *slog.Logger
}

type HandlerOption func(*Handler)

// WithProvider enables the OAuth flow. Without it / renders the
// configuration error page.
func WithProvider(p IdentityProvider) HandlerOption {
	return func(h *Handler) { h.provider = p }
}

// WithBanChecker enables real lookups on the internal ban endpoint.
func WithBanChecker(b BanChecker) HandlerOption {
	return func(h *Handler) { h.bans = b }
}

// WithGatherer sets the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) HandlerOption {
	return func(h *Handler) { h.gatherer = g }
}

func NewHandler(cfg model.Web, community model.Community, verifier Verifier, logger *slog.Logger, opts ...HandlerOption) *Handler {
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = defaultUpstreamTimeout
	}
	limit, burst := rate.Limit(cfg.RateLimit), cfg.RateBurst
	if limit <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}

	h := &Handler{
		cfg:       cfg,
		community: community,
		verifier:  verifier,
		gatherer:  prometheus.DefaultGatherer,
		limiter:   NewIPRateLimiter(limit, burst),
		logger:    logger.With("component", "web"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router builds the gin engine with every route and middleware installed.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(h.logger))
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.index)
	r.GET("/callback", RateLimit(h.limiter), h.callback)
	r.GET("/health", h.health)
	r.GET("/internal/check_ban/:user_id", h.requireInternalToken, h.checkBan)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
}

func (h *Handler) index(c *gin.Context) {
	if h.provider == nil {
		h.renderError(c, http.StatusServiceUnavailable, "Configuration Error",
			"Discord OAuth2 credentials not configured. Please set CLIENT_ID and CLIENT_SECRET environment variables.")
		return
	}

	redirect := redirectURI(h.cfg, c.Request)
	state := generateState(c, redirect)

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Community": h.community.Name,
		"AuthURL":   h.provider.AuthCodeURL(state, redirect),
	})
}

func (h *Handler) callback(c *gin.Context) {
	ctx := c.Request.Context()
	log := h.logger.With("request_id", c.GetString(requestIDKey))

	if h.provider == nil {
		h.renderError(c, http.StatusServiceUnavailable, "Configuration Error",
			"Discord OAuth2 credentials not configured.")
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		log.WarnContext(ctx, "oauth callback returned error", "error", errParam)
		h.renderError(c, http.StatusBadRequest, "Authorization Error",
			"Discord authorization failed: "+errParam)
		return
	}

	code := c.Query("code")
	if code == "" {
		log.WarnContext(ctx, "oauth callback missing code")
		h.renderError(c, http.StatusBadRequest, "Authorization Error",
			"No authorization code received from Discord.")
		return
	}

	redirect, ok := validateState(c)
	if !ok {
		log.WarnContext(ctx, "oauth state mismatch")
		h.renderError(c, http.StatusBadRequest, "Authorization Error",
			"Your verification session expired. Please start again.")
		return
	}
	clearState(c)

	upstreamCtx, cancel := context.WithTimeout(ctx, h.cfg.UpstreamTimeout)
	identity, err := h.provider.Exchange(upstreamCtx, code, redirect)
	cancel()
	if err != nil {
		log.ErrorContext(ctx, "oauth exchange failed", "error", err)
		switch {
		case errors.Is(err, oauth.ErrTokenExchange):
			h.renderError(c, http.StatusBadGateway, "Token Error", "Failed to obtain access token from Discord.")
		case errors.Is(err, oauth.ErrIdentityFetch):
			h.renderError(c, http.StatusBadGateway, "API Error", "Failed to fetch your Discord servers.")
		default:
			h.renderError(c, http.StatusInternalServerError, "Unexpected Error", "An unexpected error occurred. Please try again.")
		}
		return
	}

	v := h.verifier.DecideOAuth(ctx, identity.UserID, identity.Username, identity.InGuild(h.community.GuildID))
	if !v.Verified {
		h.renderError(c, http.StatusForbidden, "Verification Failed",
			"You have never been a member of the "+h.community.Name+" server. Only current or past "+h.community.Name+" members can verify.")
		return
	}

	c.HTML(http.StatusOK, "success.html", gin.H{
		"Community":     h.community.Name,
		"CurrentMember": v.Source == model.SourceCurrent,
	})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": serviceName})
}

type banResponse struct {
	Banned bool    `json:"banned"`
	Reason *string `json:"reason"`
	Error  *string `json:"error"`
}

func (h *Handler) requireInternalToken(c *gin.Context) {
	if h.cfg.InternalToken != "" && c.GetHeader(internalTokenHeader) != h.cfg.InternalToken {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func (h *Handler) checkBan(c *gin.Context) {
	if h.bans == nil {
		msg := "Manual ban checking required"
		c.JSON(http.StatusOK, banResponse{Error: &msg})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.UpstreamTimeout)
	defer cancel()

	userID := c.Param("user_id")
	res := h.bans.GetBan(ctx, userID)
	switch res.Status {
	case verify.Banned:
		reason := res.Reason
		if reason == "" {
			reason = verify.NoBanReason
		}
		c.JSON(http.StatusOK, banResponse{Banned: true, Reason: &reason})
	case verify.NotBanned:
		c.JSON(http.StatusOK, banResponse{})
	default:
		h.logger.WarnContext(ctx, "ban lookup failed", "user_id", userID, "error", res.Err)
		msg := "Ban lookup failed"
		c.JSON(http.StatusBadGateway, banResponse{Error: &msg})
	}
}

func (h *Handler) renderError(c *gin.Context, status int, title, message string) {
	c.HTML(status, "error.html", gin.H{
		"Community": h.community.Name,
		"Title":     title,
		"Message":   message,
	})
}
