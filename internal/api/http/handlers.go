package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PhoneOS/internal/domain/store"
	"github.com/GriffinCanCode/PhoneOS/internal/domain/system"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/PhoneOS/internal/shared/id"
)

// maxActionBytes bounds a dispatched action body
const maxActionBytes = 64 << 10

// Version is reported by the root endpoint
const Version = "0.1.0"

// HealthSource reports lifecycle details for /health
type HealthSource interface {
	Restored() bool
	PersistenceState() resilience.State
}

// Handlers contains all HTTP handlers
type Handlers struct {
	store    store.Handle
	health   HealthSource
	metrics  *monitoring.Metrics
	location *time.Location
	now      func() time.Time
	log      *logging.Logger
}

// Options configures Handlers
type Options struct {
	Health HealthSource
	// Location renders the status bar clock; defaults to local time
	Location *time.Location
	Now      func() time.Time
	Metrics  *monitoring.Metrics
	Logger   *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(handle store.Handle, opts Options) *Handlers {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handlers{
		store:    handle,
		health:   opts.Health,
		metrics:  opts.Metrics,
		location: opts.Location,
		now:      opts.Now,
		log:      logging.Or(opts.Logger).Component("http"),
	}
}

// Register mounts the routes on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/state", h.State)
	r.GET("/status", h.Status)
	r.GET("/apps", h.Apps)
	r.GET("/notifications", h.Notifications)
	r.GET("/options", h.Options)
	r.POST("/actions", h.Dispatch)
}

// Root identifies the service
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "PhoneOS emulator",
		"version": Version,
	})
}

// Health reports liveness plus persistence and traffic details
func (h *Handlers) Health(c *gin.Context) {
	s := h.store.State()
	body := gin.H{
		"status":  "healthy",
		"booted":  s.Booted,
		"metrics": h.metrics.Snapshot(),
	}
	if h.health != nil {
		persistence := h.health.PersistenceState()
		body["restored"] = h.health.Restored()
		body["persistence"] = persistence.String()
		if persistence == resilience.StateOpen {
			body["status"] = "degraded"
		}
	}
	c.JSON(http.StatusOK, body)
}

// State returns the whole device state
func (h *Handlers) State(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.store.State())
}

// Status returns the status bar view
func (h *Handlers) Status(c *gin.Context) {
	writeJSON(c, http.StatusOK, system.Status(h.store.State(), h.location))
}

// Apps returns the catalog with the launcher layout resolved
func (h *Handlers) Apps(c *gin.Context) {
	s := h.store.State()
	writeJSON(c, http.StatusOK, gin.H{
		"apps":     s.Apps,
		"homeGrid": s.HomeGrid,
		"home":     system.HomeApps(s),
		"dock":     system.Dock(s),
		"running":  s.Running,
		"recents":  s.Recents,
	})
}

// Notifications returns the shade, newest first
func (h *Handlers) Notifications(c *gin.Context) {
	s := h.store.State()
	writeJSON(c, http.StatusOK, gin.H{
		"notifications": s.Notifications,
		"unread":        system.UnreadCount(s),
	})
}

// Options lists the values the settings app offers
func (h *Handlers) Options(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{
		"themes":        system.Themes,
		"wallpapers":    system.WallpaperPresets,
		"quickSettings": system.QuickSettingKeys,
	})
}

// Dispatch accepts a wire action. Invalid targets are not errors: the
// action is accepted and simply changes nothing.
func (h *Handlers) Dispatch(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxActionBytes))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "action too large"})
		return
	}

	action, err := system.DecodeAction(body)
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, system.ErrUnknownAction) && !errors.Is(err, system.ErrMalformedAction) {
			status = http.StatusInternalServerError
		}
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	action = system.CompleteNotification(action, id.Notification, h.now().UnixMilli())
	if span := tracing.SpanFrom(c); span != nil {
		span.SetTag("action", string(action.Kind()))
	}

	h.store.Dispatch(action)
	h.log.Debug("Dispatched", zap.String("action", string(action.Kind())), zap.String("ip", c.ClientIP()))

	c.JSON(http.StatusAccepted, gin.H{"accepted": action.Kind()})
}
