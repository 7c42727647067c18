package webhook

import (
	"encoding/json"
	"io"
	"net/http"

	"gupshup-gateway/internal/database"
	"gupshup-gateway/internal/models"
	"gupshup-gateway/pkg/gupshup"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const maxEventBytes = 1 << 20

// Notifier pushes stored message changes to live clients. *ws.Hub implements it.
type Notifier interface {
	NotifyMessage(msg models.Message)
	NotifyStatus(msg models.Message)
}

type Handler struct {
	Store *database.Store
	Hub   Notifier
	Log   zerolog.Logger
}

func NewHandler(store *database.Store, hub Notifier, log zerolog.Logger) *Handler {
	return &Handler{
		Store: store,
		Hub:   hub,
		Log:   log.With().Str("component", "webhook").Logger(),
	}
}

// HandleEvent receives the callbacks posted to the app's callback URL. The provider
// retries non-2xx answers, so storage problems are logged and still acknowledged.
func (h *Handler) HandleEvent(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxEventBytes))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	// The provider validates a new callback URL with an empty POST.
	if len(body) == 0 {
		c.Status(http.StatusOK)
		return
	}

	var event gupshup.Event
	if err := json.Unmarshal(body, &event); err != nil {
		h.Log.Warn().Err(err).Msg("undecodable callback")
		c.Status(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case gupshup.EventMessage:
		h.handleInbound(c, event)
	case gupshup.EventMessageEvent:
		h.handleStatus(c, event)
	default:
		h.Log.Debug().Str("type", string(event.Type)).Str("app", event.App).Msg("ignoring callback")
	}

	c.Status(http.StatusOK)
}

func (h *Handler) handleInbound(c *gin.Context, event gupshup.Event) {
	message, err := event.InboundMessage()
	if err != nil {
		h.Log.Warn().Err(err).Msg("bad inbound message")
		return
	}

	content := message.Text()
	if content == "" {
		content = "[" + message.Type + "]"
	}
	h.Log.Info().Str("from", message.Source).Str("type", message.Type).Msg("received message")

	record := models.Message{
		ProviderID: message.ID,
		App:        event.App,
		Source:     message.Source,
		Type:       message.Type,
		Content:    content,
		Payload:    string(message.Payload),
	}
	if err := h.Store.RecordInbound(c.Request.Context(), &record, message.Sender.Name); err != nil {
		h.Log.Error().Err(err).Str("id", message.ID).Msg("store inbound message")
		return
	}
	h.Hub.NotifyMessage(record)
}

func (h *Handler) handleStatus(c *gin.Context, event gupshup.Event) {
	status, err := event.MessageEvent()
	if err != nil {
		h.Log.Warn().Err(err).Msg("bad message event")
		return
	}

	var reason string
	if status.Type == gupshup.StatusFailed {
		var failure struct {
			Reason string `json:"reason"`
		}
		if err := json.Unmarshal(status.Payload, &failure); err == nil {
			reason = failure.Reason
		}
	}

	record, changed, err := h.Store.UpdateStatus(c.Request.Context(), status.MessageID(), string(status.Type), reason)
	switch {
	case database.IsNotFound(err):
		h.Log.Debug().Str("id", status.MessageID()).Str("status", string(status.Type)).Msg("status for unknown message")
		return
	case err != nil:
		h.Log.Error().Err(err).Str("id", status.MessageID()).Msg("update message status")
		return
	case !changed:
		h.Log.Debug().Str("id", status.MessageID()).Str("status", string(status.Type)).Msg("stale status ignored")
		return
	}
	h.Hub.NotifyStatus(*record)
}
