// Package web provides API routes for the web server.
package web

import (
	"errors"
	"net/http"

	"github.com/PancyStudios/GuardBotGo/pkg/config"
	"github.com/PancyStudios/GuardBotGo/pkg/database"
	"github.com/PancyStudios/GuardBotGo/pkg/discord"
	"github.com/PancyStudios/GuardBotGo/pkg/mqtt"
	"github.com/gin-gonic/gin"
)

// ErrNotFound is returned by a ReportFunc when the user is not stored
var ErrNotFound = errors.New("not found")

// ReportFunc returns the public warn report of a user
type ReportFunc func(userID string) (interface{}, error)

// SetupAPIRoutes sets up the API routes
func SetupAPIRoutes(s *Server, reports ReportFunc) {
	api := s.Group("/api")
	{
		api.GET("/status", statusHandler)
		api.GET("/health", healthHandler)
		api.GET("/bot", botInfoHandler)
		api.GET("/users/:id/warns", warnsHandler(reports))
	}
}

// statusHandler returns the bot and database status
func statusHandler(c *gin.Context) {
	db := database.Get()
	client := discord.Get()

	dbStatus, dbOnline := "🔴 | Desconectado", false
	pending := 0
	if db != nil {
		dbStatus, dbOnline = db.GetStatus()
		pending = db.PendingWrites()
	}

	botOnline := false
	if client != nil {
		botOnline = client.IsReady()
	}

	mqttOnline := false
	if mc := mqtt.Get(); mc != nil {
		mqttOnline = mc.IsConnected()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": config.Version,
		"database": gin.H{
			"status":        dbStatus,
			"isOnline":      dbOnline,
			"pendingWrites": pending,
		},
		"bot": gin.H{
			"isOnline": botOnline,
		},
		"mqtt": gin.H{
			"isOnline": mqttOnline,
		},
	})
}

// healthHandler returns a simple health check response
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "GuardBot Go is running",
	})
}

// botInfoHandler returns information about the bot
func botInfoHandler(c *gin.Context) {
	client := discord.Get()

	if client == nil || !client.IsReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Bot Offline",
			"message": "El bot no está disponible en este momento.",
		})
		return
	}

	user := client.Session.State.User

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"avatar":   user.Avatar,
		"guilds":   client.GuildCount(),
		"isReady":  client.IsReady(),
		"prefix":   client.Prefix,
	})
}

// warnsHandler exposes the active warns of a user
func warnsHandler(reports ReportFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if reports == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service Unavailable"})
			return
		}

		report, err := reports(c.Param("id"))
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "El usuario no tiene registros.",
			})
		case errors.Is(err, database.ErrNotConnected):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "Database Offline",
				"message": "La base de datos no está disponible en este momento.",
			})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": err.Error(),
			})
		default:
			c.JSON(http.StatusOK, report)
		}
	}
}
