package api

import (
	"errors"
	"net/http"

	"gupshup-gateway/pkg/gupshup"

	"github.com/gin-gonic/gin"
)

func (h *PartnerHandler) GetProfile(c *gin.Context) {
	profile, err := h.Client.GetProfileDetails(c.Request.Context(), c.Param("appId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *PartnerHandler) UpdateProfile(c *gin.Context) {
	var req gupshup.ProfileDetails
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Client.UpdateProfileDetails(c.Request.Context(), c.Param("appId"), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *PartnerHandler) GetAbout(c *gin.Context) {
	about, err := h.Client.GetAbout(c.Request.Context(), c.Param("appId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"about": about})
}

type AboutRequest struct {
	About string `json:"about" binding:"required,max=139"`
}

func (h *PartnerHandler) UpdateAbout(c *gin.Context) {
	var req AboutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Client.UpdateAbout(c.Request.Context(), c.Param("appId"), req.About); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"about": req.About})
}

func (h *PartnerHandler) GetPhoto(c *gin.Context) {
	photo, err := h.Client.GetProfilePicture(c.Request.Context(), c.Param("appId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": photo})
}

func (h *PartnerHandler) UpdatePhoto(c *gin.Context) {
	file, _, err := c.Request.FormFile("image")
	if err != nil {
		badRequest(c, errors.New("image is required"))
		return
	}
	defer file.Close()

	if err := h.Client.UpdateProfilePicture(c.Request.Context(), c.Param("appId"), file); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Photo updated"})
}

func (h *PartnerHandler) RemovePhoto(c *gin.Context) {
	if err := h.Client.RemoveProfilePicture(c.Request.Context(), c.Param("appId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Photo removed"})
}
