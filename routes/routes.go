package routes

import (
	"net/http"
	"time"

	"enrolla/config"
	"enrolla/handlers"
	"enrolla/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Webhook  *handlers.WebhookHandler
	Process  *handlers.ProcessHandler
	Outbound *handlers.OutboundHandler
}

// RegisterWebhookRoutes registers the channel webhook endpoints. These are
// intentionally unauthenticated beyond the channel's own verify handshake.
func RegisterWebhookRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/whatsapp")
	{
		api.GET("/webhook", hb.Webhook.VerifyHandler)
		api.POST("/webhook", hb.Webhook.EventHandler)
	}
}

// RegisterProcessRoutes registers the authenticated processing trigger.
func RegisterProcessRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/whatsapp")
	{
		api.Use(middleware.CronAuthMiddleware(config.AppConfig.CronSecret))
		api.POST("/process", hb.Process.ProcessChatHandler)
	}
}

// RegisterOutboundRoutes registers the manual send surface.
func RegisterOutboundRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/whatsapp/send")
	{
		api.Use(middleware.CronAuthMiddleware(config.AppConfig.CronSecret))
		api.POST("/text", hb.Outbound.SendTextHandler)
		api.POST("/image", hb.Outbound.SendImageHandler)
		api.POST("/audio", hb.Outbound.SendAudioHandler)
		api.POST("/document", hb.Outbound.SendDocumentHandler)
		api.POST("/read", hb.Outbound.MarkReadHandler)
		api.POST("/media", hb.Outbound.UploadMediaHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Enrolla"})
	})
}

// RegisterRoutes wires up CORS and all route groups.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterWebhookRoutes(r, hb)
	RegisterProcessRoutes(r, hb)
	RegisterOutboundRoutes(r, hb)
}
