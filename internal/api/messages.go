package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"gupshup-gateway/internal/database"
	"gupshup-gateway/internal/models"
	"gupshup-gateway/internal/ws"
	"gupshup-gateway/pkg/gupshup"

	"github.com/gin-gonic/gin"
)

// MessageSender is the part of gupshup.Sender the dashboard uses.
type MessageSender interface {
	SendMessage(ctx context.Context, destination string, msg gupshup.Message) (string, error)
	Source() string
}

type MessageHandler struct {
	Sender MessageSender
	Store  *database.Store
	Hub    *ws.Hub
}

func NewMessageHandler(sender MessageSender, store *database.Store, hub *ws.Hub) *MessageHandler {
	return &MessageHandler{Sender: sender, Store: store, Hub: hub}
}

func (h *MessageHandler) GetMessages(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, errors.New("limit must be an integer"))
			return
		}
		limit = n
	}

	messages, err := h.Store.ListMessages(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *MessageHandler) GetMessage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, errors.New("id must be a positive integer"))
		return
	}
	msg, err := h.Store.GetMessage(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

type SendRequest struct {
	Destination string          `json:"destination" binding:"required"`
	Message     json.RawMessage `json:"message" binding:"required"`
}

// SendMessage sends any supported message type. The failed attempt is stored too so
// the dashboard shows it.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	msg, err := gupshup.DecodeMessage(req.Message)
	if err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	record := models.Message{
		Source:      h.Sender.Source(),
		Destination: req.Destination,
		Type:        string(msg.Type()),
		Content:     summary(msg),
		Payload:     database.MessagePayload(msg),
	}

	messageID, sendErr := h.Sender.SendMessage(ctx, req.Destination, msg)
	if sendErr != nil {
		record.Status = string(gupshup.StatusFailed)
		record.Error = sendErr.Error()
	}
	record.ProviderID = messageID

	if err := h.Store.RecordOutbound(ctx, &record); err != nil {
		requestLog(c).Error().Err(err).Str("destination", req.Destination).Msg("store outbound message")
	} else {
		h.Hub.NotifyMessage(record)
	}

	if sendErr != nil {
		respondError(c, sendErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Message sent", "message_id": messageID, "id": record.ID})
}

// summary is the human readable text stored next to the raw payload.
func summary(msg gupshup.Message) string {
	switch m := msg.(type) {
	case gupshup.TextMessage:
		return m.Text
	case gupshup.ImageMessage:
		return "[image]:" + m.OriginalURL + caption(m.Caption)
	case gupshup.VideoMessage:
		return "[video]:" + m.URL + caption(m.Caption)
	case gupshup.FileMessage:
		return "[file]:" + m.URL + caption(m.Filename)
	case gupshup.AudioMessage:
		return "[audio]:" + m.URL
	case gupshup.StickerMessage:
		return "[sticker]:" + m.URL
	case gupshup.ListMessage:
		return m.Body
	case gupshup.QuickReplyMessage:
		return m.Content.Text
	case gupshup.LocationMessage:
		return "[location]:" + m.Name
	case gupshup.ContactMessage:
		return "[contact]:" + m.Contact.Name.FormattedName
	default:
		return "[" + string(msg.Type()) + "]"
	}
}

func caption(text string) string {
	if text == "" {
		return ""
	}
	return ":" + text
}
