package api

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aihealthrcm/demo-desk/pkg/models"
	"github.com/aihealthrcm/demo-desk/pkg/services"
	"github.com/aihealthrcm/demo-desk/pkg/views"
	"github.com/aihealthrcm/demo-desk/pkg/wizard"
)

const sessionsPath = "/api/demo/sessions"

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	sessions *services.SessionService
	catalog  *models.Catalog
	logger   *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(sessions *services.SessionService, catalog *models.Catalog, logger *zap.Logger) *Handlers {
	return &Handlers{
		sessions: sessions,
		catalog:  catalog,
		logger:   logger,
	}
}

// Register mounts every route on router
func (h *Handlers) Register(router gin.IRouter) {
	router.GET("/health", h.HealthCheck)

	api := router.Group("/api/demo")
	api.GET("/catalog", h.Catalog)
	api.POST("/sessions", h.OpenSession)
	api.GET("/sessions/:id", h.GetSession)
	api.PATCH("/sessions/:id", h.UpdateSession)
	api.POST("/sessions/:id/next", h.NextStep)
	api.POST("/sessions/:id/back", h.PreviousStep)
	api.POST("/sessions/:id/switch", h.SwitchDemoType)
	api.DELETE("/sessions/:id", h.CloseSession)

	router.GET("/demo/sessions/:id", h.RenderSession)
}

// HealthCheck handler for monitoring
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": h.sessions.Len(),
	})
}

func (h *Handlers) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog)
}

type demoTypeBody struct {
	DemoType string `json:"demo_type" form:"demo_type" binding:"required,oneof=live video assessment"`
}

// OpenSession is the modal's open(demoType) trigger
func (h *Handlers) OpenSession(c *gin.Context) {
	var body demoTypeBody
	if err := c.ShouldBind(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "demo_type must be one of live, video, assessment"})
		return
	}

	snap, err := h.sessions.Open(models.DemoType(body.DemoType))
	if err != nil {
		h.respond(c, snap, err)
		return
	}
	c.Header("Location", sessionsPath+"/"+snap.SessionID)
	h.render(c, http.StatusCreated, snap, "")
}

func (h *Handlers) GetSession(c *gin.Context) {
	snap, err := h.sessions.Get(c.Param("id"))
	h.respond(c, snap, err)
}

func (h *Handlers) UpdateSession(c *gin.Context) {
	var patch wizard.Patch
	if err := c.ShouldBind(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	snap, err := h.sessions.Update(c.Param("id"), patch)
	h.respond(c, snap, err)
}

func (h *Handlers) NextStep(c *gin.Context) {
	snap, err := h.sessions.Next(c.Request.Context(), c.Param("id"))
	h.respond(c, snap, err)
}

func (h *Handlers) PreviousStep(c *gin.Context) {
	snap, err := h.sessions.Back(c.Param("id"))
	h.respond(c, snap, err)
}

// SwitchDemoType is the host's callback for changing demo type on an open modal
func (h *Handlers) SwitchDemoType(c *gin.Context) {
	var body demoTypeBody
	if err := c.ShouldBind(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "demo_type must be one of live, video, assessment"})
		return
	}
	snap, err := h.sessions.SwitchDemoType(c.Param("id"), models.DemoType(body.DemoType))
	h.respond(c, snap, err)
}

// CloseSession is the modal's close() trigger
func (h *Handlers) CloseSession(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id")); err != nil {
		h.respond(c, services.Snapshot{}, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RenderSession returns the wizard fragment for full-page (non-htmx) loads
func (h *Handlers) RenderSession(c *gin.Context) {
	snap, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, "demo session not found")
		return
	}
	h.renderHTML(c, http.StatusOK, snap, "")
}

// respond maps service errors onto status codes. Validation and transport
// failures still carry the session snapshot so the host can redraw.
func (h *Handlers) respond(c *gin.Context, snap services.Snapshot, err error) {
	var (
		verr *wizard.ValidationError
		terr *wizard.TransportError
	)
	switch {
	case err == nil:
		h.render(c, http.StatusOK, snap, "")
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrUnknownDemoType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, wizard.ErrTerminal):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &verr):
		h.render(c, http.StatusUnprocessableEntity, snap, verr.Error(), gin.H{"fields": verr.Fields})
	case errors.As(err, &terr):
		h.logger.Warn("demo submission failed", zap.String("session_id", snap.SessionID), zap.Error(terr.Err))
		h.render(c, http.StatusBadGateway, snap, "We couldn't submit your request. Please try again.")
	default:
		h.logger.Error("demo session action failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// render answers htmx requests with the wizard fragment and everything else with JSON
func (h *Handlers) render(c *gin.Context, status int, snap services.Snapshot, errMsg string, extra ...gin.H) {
	if isHTMX(c) {
		h.renderHTML(c, status, snap, errMsg)
		return
	}
	body := gin.H{"session": snap}
	if errMsg != "" {
		body["error"] = errMsg
	}
	for _, e := range extra {
		for k, v := range e {
			body[k] = v
		}
	}
	c.JSON(status, body)
}

func (h *Handlers) renderHTML(c *gin.Context, status int, snap services.Snapshot, errMsg string) {
	component := views.Wizard(snap, h.catalog, sessionsPath+"/"+snap.SessionID, errMsg)
	// htmx ignores non-2xx swaps by default, so rejected actions still answer 200
	if isHTMX(c) {
		status = http.StatusOK
	}
	templ.Handler(component, templ.WithStatus(status)).ServeHTTP(c.Writer, c.Request)
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}
