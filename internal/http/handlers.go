package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ochronus/gotransloadit/internal/app"
	"github.com/ochronus/gotransloadit/internal/services/transloadit"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// Handler contains the HTTP handlers for assembly notifications.
type Handler struct {
	container *app.Container
	store     *NotificationStore
	logger    *logrus.Logger
	now       func() time.Time
}

// NewHandler creates a new HTTP handler.
func NewHandler(container *app.Container, store *NotificationStore) *Handler {
	return &Handler{
		container: container,
		store:     store,
		logger:    container.Logger,
		now:       time.Now,
	}
}

// Notify handles POST requests sent to an assembly's notify_url.
func (h *Handler) Notify(c *gin.Context) {
	raw := strings.TrimSpace(c.PostForm("transloadit"))
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transloadit field is required"})
		return
	}
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transloadit field must be a JSON object"})
		return
	}

	payload := transloadit.Response(raw)
	assemblyID := payload.Get("assembly_id").String()
	if assemblyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "assembly_id is missing"})
		return
	}

	h.store.Put(Notification{
		AssemblyID: assemblyID,
		Payload:    payload,
		Signature:  c.PostForm("signature"),
		ReceivedAt: h.now(),
	})

	entry := h.logger.WithFields(logrus.Fields{
		"assembly": assemblyID,
		"status":   payload.Status(),
	})
	if code := payload.ErrorCode(); code != "" {
		entry.Warnf("assembly notification with error %s: %s", code, payload.Message())
	} else {
		entry.Info("assembly notification received")
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetAssembly returns the latest notification stored for an assembly.
func (h *Handler) GetAssembly(c *gin.Context) {
	n, ok := h.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "assembly not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assembly_id": n.AssemblyID,
		"received_at": n.ReceivedAt.UTC().Format(time.RFC3339),
		"payload":     n.Payload,
	})
}

// Health reports that the receiver is up.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
