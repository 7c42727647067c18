package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the dashboard API on group, normally "/api".
func RegisterRoutes(group *gin.RouterGroup, messages *MessageHandler, contacts *ContactHandler, partner *PartnerHandler) {
	group.GET("/messages", messages.GetMessages)
	group.GET("/messages/:id", messages.GetMessage)
	group.POST("/messages", messages.SendMessage)

	group.GET("/contacts", contacts.GetContacts)

	group.GET("/apps", partner.ListApps)
	group.POST("/apps/link", partner.LinkApp)

	app := group.Group("/apps/:appId")
	{
		app.GET("/token", partner.GetAccessToken)
		app.GET("/health", partner.CheckHealth)
		app.GET("/wallet", partner.GetWalletBalance)
		app.GET("/ratings", partner.GetRatings)
		app.GET("/usage", partner.GetUsage)
		app.GET("/discount", partner.GetDiscount)
		app.GET("/logs/inbound", partner.GetInboundLogs)
		app.GET("/logs/outbound", partner.GetOutboundLogs)

		// Users
		app.GET("/users/:phone/status", partner.GetUserStatus)
		app.PUT("/users/:phone/block", partner.BlockUser)
		app.PUT("/users/:phone/optin", partner.OptinUser)

		// Preferences
		app.PUT("/preferences/template-messaging", partner.ToggleTemplateMessaging)
		app.PUT("/preferences/optin-message", partner.ToggleOptinMessage)
		app.PUT("/callback-url", partner.SetCallbackURL)
		app.PUT("/capping", partner.UpdateCapping)
		app.PUT("/dlr-events", partner.UpdateDLREvents)

		// Templates
		app.GET("/templates", partner.GetTemplates)
		app.POST("/templates", partner.ApplyTemplate)
		app.GET("/templates/local", partner.GetLocalTemplates)
		app.POST("/templates/sync", partner.SyncTemplates)
		app.POST("/templates/send", partner.SendTemplate)
		app.GET("/templates/media", partner.ListSampleMedia)
		app.POST("/templates/media", partner.UploadSampleMedia)
		app.DELETE("/templates/:elementName", partner.DeleteTemplate)
		app.POST("/broadcast", partner.SendBroadcast)

		// Profile
		app.GET("/profile", partner.GetProfile)
		app.PUT("/profile", partner.UpdateProfile)
		app.GET("/profile/about", partner.GetAbout)
		app.PUT("/profile/about", partner.UpdateAbout)
		app.GET("/profile/photo", partner.GetPhoto)
		app.PUT("/profile/photo", partner.UpdatePhoto)
		app.DELETE("/profile/photo", partner.RemovePhoto)
	}
}
