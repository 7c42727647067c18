package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"gupshup-gateway/internal/models"
	"gupshup-gateway/pkg/gupshup"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	maxSampleMediaBytes = 16 << 20
	broadcastWorkers    = 8
)

// GetTemplates returns the live template list from the provider.
func (h *PartnerHandler) GetTemplates(c *gin.Context) {
	templates, err := h.Client.GetTemplates(c.Request.Context(), c.Param("appId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if templates == nil {
		templates = []gupshup.Template{}
	}
	c.JSON(http.StatusOK, templates)
}

// GetLocalTemplates returns templates stored by the last sync.
func (h *PartnerHandler) GetLocalTemplates(c *gin.Context) {
	templates, err := h.Store.ListTemplates(c.Request.Context(), c.Param("appId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

// SyncTemplates fetches the provider templates and stores them locally.
func (h *PartnerHandler) SyncTemplates(c *gin.Context) {
	ctx := c.Request.Context()
	appID := c.Param("appId")

	templates, err := h.Client.GetTemplates(ctx, appID)
	if err != nil {
		respondError(c, err)
		return
	}
	count, err := h.Store.SaveTemplates(ctx, appID, templates)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Hub.NotifyTemplatesSynced(appID, count)
	c.JSON(http.StatusOK, gin.H{"status": "Templates synced", "count": count})
}

func (h *PartnerHandler) ApplyTemplate(c *gin.Context) {
	var req gupshup.TemplateData
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	created, err := h.Client.ApplyForTemplate(c.Request.Context(), c.Param("appId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *PartnerHandler) DeleteTemplate(c *gin.Context) {
	if err := h.Client.DeleteTemplate(c.Request.Context(), c.Param("appId"), c.Param("elementName")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Template deleted"})
}

// UploadSampleMedia forwards a multipart "file" to the provider and records the
// returned handle id for use as a template's exampleMedia.
func (h *PartnerHandler) UploadSampleMedia(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		badRequest(c, errors.New("file is required"))
		return
	}
	defer file.Close()
	if header.Size > maxSampleMediaBytes {
		badRequest(c, errors.New("file is too large"))
		return
	}

	fileType := c.PostForm("file_type")
	if fileType == "" {
		fileType = header.Header.Get("Content-Type")
	}
	if fileType == "" {
		badRequest(c, errors.New("file_type is required"))
		return
	}

	ctx := c.Request.Context()
	appID := c.Param("appId")
	handleID, err := h.Client.GetHandleIDForSampleMedia(ctx, appID, header.Filename, io.LimitReader(file, maxSampleMediaBytes), fileType)
	if err != nil {
		respondError(c, err)
		return
	}

	media := models.Media{AppID: appID, HandleID: handleID, Filename: header.Filename, MimeType: fileType, FileSize: header.Size}
	if err := h.Store.SaveMedia(ctx, &media); err != nil {
		requestLog(c).Error().Err(err).Str("handle_id", handleID).Msg("store sample media")
	}
	c.JSON(http.StatusOK, media)
}

func (h *PartnerHandler) ListSampleMedia(c *gin.Context) {
	media, err := h.Store.ListMedia(c.Request.Context(), c.Param("appId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, media)
}

type TemplateSendRequest struct {
	TemplateID  string   `json:"template_id" binding:"required"`
	Params      []string `json:"params"`
	Source      string   `json:"source"`
	Destination string   `json:"destination" binding:"required"`
}

func (h *PartnerHandler) SendTemplate(c *gin.Context) {
	var req TemplateSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	message := gupshup.TemplateMessage{ID: req.TemplateID, Params: req.Params, Source: req.Source, Destination: req.Destination}
	record, err := h.sendTemplate(c.Request.Context(), requestLog(c), c.Param("appId"), message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Message sent", "message_id": record.ProviderID, "id": record.ID})
}

type BroadcastRequest struct {
	TemplateID   string   `json:"template_id" binding:"required"`
	Params       []string `json:"params"`
	Source       string   `json:"source"`
	Destinations []string `json:"destinations" binding:"required,min=1"`
}

type BroadcastResult struct {
	Destination string `json:"destination"`
	MessageID   string `json:"message_id,omitempty"`
	Error       string `json:"error,omitempty"`
}

// SendBroadcast sends one template to many destinations with bounded concurrency.
// Individual failures are reported per destination.
func (h *PartnerHandler) SendBroadcast(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	log := requestLog(c)
	appID := c.Param("appId")

	results := make([]BroadcastResult, len(req.Destinations))
	var mu sync.Mutex
	sent := 0

	var g errgroup.Group
	g.SetLimit(broadcastWorkers)
	for i, destination := range req.Destinations {
		i, destination := i, destination
		g.Go(func() error {
			result := BroadcastResult{Destination: destination}
			message := gupshup.TemplateMessage{ID: req.TemplateID, Params: req.Params, Source: req.Source, Destination: destination}
			record, err := h.sendTemplate(ctx, log, appID, message)
			if err != nil {
				result.Error = err.Error()
				log.Warn().Err(err).Str("destination", destination).Msg("broadcast failed")
			} else {
				result.MessageID = record.ProviderID
				mu.Lock()
				sent++
				mu.Unlock()
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	c.JSON(http.StatusOK, gin.H{
		"status":  "Broadcast processed",
		"sent_to": sent,
		"total":   len(req.Destinations),
		"results": results,
	})
}

// sendTemplate sends one template message and stores the attempt.
func (h *PartnerHandler) sendTemplate(ctx context.Context, log *zerolog.Logger, appID string, message gupshup.TemplateMessage) (*models.Message, error) {
	messageID, sendErr := h.Client.SendMessageWithTemplateID(ctx, appID, message)

	record := models.Message{
		ProviderID:  messageID,
		App:         appID,
		Source:      message.Source,
		Destination: message.Destination,
		Type:        "template",
		Content:     "[template]:" + message.ID,
	}
	if payload, err := json.Marshal(message); err == nil {
		record.Payload = string(payload)
	}
	if sendErr != nil {
		record.Status = string(gupshup.StatusFailed)
		record.Error = sendErr.Error()
	}

	if err := h.Store.RecordOutbound(ctx, &record); err != nil {
		log.Error().Err(err).Str("destination", message.Destination).Msg("store template message")
	} else {
		h.Hub.NotifyMessage(record)
	}
	if sendErr != nil {
		return nil, sendErr
	}
	return &record, nil
}
