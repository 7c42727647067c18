package api

import (
	"net/http"

	"gupshup-gateway/internal/database"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	Store *database.Store
}

func NewContactHandler(store *database.Store) *ContactHandler {
	return &ContactHandler{Store: store}
}

func (h *ContactHandler) GetContacts(c *gin.Context) {
	contacts, err := h.Store.ListContacts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}
