package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"gupshup-gateway/internal/database"
	"gupshup-gateway/internal/ws"
	"gupshup-gateway/pkg/gupshup"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// PartnerHandler exposes the partner account endpoints per app.
type PartnerHandler struct {
	Client *gupshup.PartnerClient
	Store  *database.Store
	Hub    *ws.Hub
}

func NewPartnerHandler(client *gupshup.PartnerClient, store *database.Store, hub *ws.Hub) *PartnerHandler {
	return &PartnerHandler{Client: client, Store: store, Hub: hub}
}

// --- Apps ---

func (h *PartnerHandler) ListApps(c *gin.Context) {
	apps, err := h.Client.GetAllAppDetails(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if apps == nil {
		apps = []gupshup.App{}
	}
	c.JSON(http.StatusOK, apps)
}

type LinkAppRequest struct {
	AppName string `json:"app_name" binding:"required"`
	APIKey  string `json:"api_key" binding:"required"`
}

func (h *PartnerHandler) LinkApp(c *gin.Context) {
	var req LinkAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	link, err := h.Client.AppLink(c.Request.Context(), req.AppName, req.APIKey)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

func (h *PartnerHandler) GetAccessToken(c *gin.Context) {
	token, err := h.Client.GetAccessToken(c.Request.Context(), c.Param("appId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *PartnerHandler) CheckHealth(c *gin.Context) {
	healthy, err := h.Client.CheckHealth(c.Request.Context(), c.Param("appId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"healthy": healthy})
}

func (h *PartnerHandler) GetWalletBalance(c *gin.Context) {
	balance, err := h.Client.GetWalletBalance(c.Request.Context(), c.Param("appId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

func (h *PartnerHandler) GetRatings(c *gin.Context) {
	ratings, err := h.Client.CheckQualityRatingAndMessagingLimits(c.Request.Context(), c.Param("appId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ratings)
}

// --- Users ---

func (h *PartnerHandler) GetUserStatus(c *gin.Context) {
	status, err := h.Client.GetUserStatus(c.Request.Context(), c.Param("appId"), c.Param("phone"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

type BlockRequest struct {
	Blocked *bool `json:"blocked" binding:"required"`
}

func (h *PartnerHandler) BlockUser(c *gin.Context) {
	var req BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	phone := c.Param("phone")
	if err := h.Client.BlockUser(ctx, c.Param("appId"), phone, *req.Blocked); err != nil {
		respondError(c, err)
		return
	}

	status := "unblocked"
	if *req.Blocked {
		status = "blocked"
	}
	if err := h.Store.SetContactStatus(ctx, phone, status); err != nil {
		requestLog(c).Error().Err(err).Str("phone", phone).Msg("store contact status")
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (h *PartnerHandler) OptinUser(c *gin.Context) {
	ctx := c.Request.Context()
	phone := c.Param("phone")
	if err := h.Client.OptinAppUser(ctx, c.Param("appId"), phone); err != nil {
		respondError(c, err)
		return
	}
	if err := h.Store.SetContactStatus(ctx, phone, "OPT_IN"); err != nil {
		requestLog(c).Error().Err(err).Str("phone", phone).Msg("store contact status")
	}
	c.JSON(http.StatusOK, gin.H{"status": "OPT_IN"})
}

// --- Preferences ---

type ToggleRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (h *PartnerHandler) ToggleTemplateMessaging(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Client.ToggleTemplateMessaging(c.Request.Context(), c.Param("appId"), *req.Enabled); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": *req.Enabled})
}

func (h *PartnerHandler) ToggleOptinMessage(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Client.ToggleAutomatedOptinMessage(c.Request.Context(), c.Param("appId"), *req.Enabled); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": *req.Enabled})
}

type CallbackURLRequest struct {
	URL string `json:"url" binding:"required,url"`
}

func (h *PartnerHandler) SetCallbackURL(c *gin.Context) {
	var req CallbackURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Client.SetCallbackURL(c.Request.Context(), c.Param("appId"), req.URL); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": req.URL})
}

type CappingRequest struct {
	Cap *float64 `json:"cap" binding:"required,gte=0"`
}

func (h *PartnerHandler) UpdateCapping(c *gin.Context) {
	var req CappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Client.UpdateCapping(c.Request.Context(), c.Param("appId"), *req.Cap); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cap": *req.Cap})
}

type DLREventsRequest struct {
	Modes []gupshup.DLREvent `json:"modes"`
}

// UpdateDLREvents accepts an empty list, which turns every callback event off.
func (h *PartnerHandler) UpdateDLREvents(c *gin.Context) {
	var req DLREventsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Client.UpdateDLREvents(c.Request.Context(), c.Param("appId"), req.Modes...); err != nil {
		respondError(c, err)
		return
	}
	if req.Modes == nil {
		req.Modes = []gupshup.DLREvent{}
	}
	c.JSON(http.StatusOK, gin.H{"modes": req.Modes})
}

// --- Reporting ---

func (h *PartnerHandler) GetUsage(c *gin.Context) {
	from, err := time.Parse(dateLayout, c.Query("from"))
	if err != nil {
		badRequest(c, errors.New("from must be a YYYY-MM-DD date"))
		return
	}
	to, err := time.Parse(dateLayout, c.Query("to"))
	if err != nil {
		badRequest(c, errors.New("to must be a YYYY-MM-DD date"))
		return
	}
	if to.Before(from) {
		badRequest(c, errors.New("to must not be before from"))
		return
	}

	usage, err := h.Client.GetAppUsage(c.Request.Context(), c.Param("appId"), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usage)
}

func (h *PartnerHandler) GetDiscount(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year <= 0 {
		badRequest(c, errors.New("year must be a positive integer"))
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		badRequest(c, errors.New("month must be between 1 and 12"))
		return
	}

	discounts, err := h.Client.GetAppDailyDiscount(c.Request.Context(), c.Param("appId"), year, time.Month(month))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, discounts)
}

func (h *PartnerHandler) GetInboundLogs(c *gin.Context) {
	from, err := time.Parse(dateLayout, c.Query("from"))
	if err != nil {
		badRequest(c, errors.New("from must be a YYYY-MM-DD date"))
		return
	}
	to, err := time.Parse(dateLayout, c.Query("to"))
	if err != nil {
		badRequest(c, errors.New("to must be a YYYY-MM-DD date"))
		return
	}
	logs, err := h.Client.GetInboundMessageEventLogs(c.Request.Context(), c.Param("appId"), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", logs)
}

func (h *PartnerHandler) GetOutboundLogs(c *gin.Context) {
	date, err := time.Parse(dateLayout, c.Query("date"))
	if err != nil {
		badRequest(c, errors.New("date must be a YYYY-MM-DD date"))
		return
	}
	logs, err := h.Client.GetOutboundMessageEventLogs(c.Request.Context(), c.Param("appId"), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", logs)
}
