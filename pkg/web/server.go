// Package web provides an HTTP server with routing and middleware.
// It uses Gin framework for high-performance web handling.
package web

import (
	"bytes"
	"fmt"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/PancyStudios/GuardBotGo/pkg/errors"
	"github.com/PancyStudios/GuardBotGo/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// Server represents the web server
type Server struct {
	engine           *gin.Engine
	webhookURL       string
	allowedHostRegex *regexp.Regexp
	httpClient       *http.Client
}

var (
	server *Server
)

// Init initializes the global web server
func Init(webhookURL, allowedHosts string) (*Server, error) {
	s, err := NewServer(webhookURL, allowedHosts)
	if err != nil {
		return nil, err
	}
	server = s
	return server, nil
}

// Get returns the global web server
func Get() *Server {
	return server
}

// NewServer creates a new web server. Requests whose Host does not match
// allowedHosts are rejected; an empty pattern accepts every host.
func NewServer(webhookURL, allowedHosts string) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine:     gin.New(),
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}

	if allowedHosts != "" {
		re, err := regexp.Compile(allowedHosts)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed hosts pattern: %w", err)
		}
		s.allowedHostRegex = re
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(s.logsMiddleware())
	s.engine.Use(s.rateLimitMiddleware(RateLimitConfig{
		WindowMs:    60 * time.Second,
		MaxRequests: 100,
	}))

	s.setupErrorHandlers()

	return s, nil
}

// Engine returns the underlying Gin engine
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) hostAllowed(host string) bool {
	return s.allowedHostRegex == nil || s.allowedHostRegex.MatchString(host)
}

// requestLog is what the webhook learns about a request
type requestLog struct {
	method  string
	path    string
	ip      string
	headers http.Header
	query   string
}

// logsMiddleware logs all incoming requests to the webhook
func (s *Server) logsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		entry := requestLog{
			method:  c.Request.Method,
			path:    c.Request.URL.Path,
			ip:      c.ClientIP(),
			headers: c.Request.Header.Clone(),
			query:   c.Request.URL.RawQuery,
		}

		if !s.hostAllowed(c.Request.Host) {
			logger.Warn(fmt.Sprintf("[LOG] Solicitud Sospechosa: %s %s | %s", entry.method, entry.path, entry.ip), "WebServer")
			errors.Go(func() { s.sendLogToWebhook(entry, true) })
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		logger.Info(fmt.Sprintf("[LOG] Nueva solicitud: %s %s", entry.method, entry.path), "WebServer")
		errors.Go(func() { s.sendLogToWebhook(entry, false) })
		c.Next()
	}
}

// sendLogToWebhook sends a log message to the Discord webhook
func (s *Server) sendLogToWebhook(entry requestLog, suspicious bool) {
	if s.webhookURL == "" {
		return
	}

	title := fmt.Sprintf("💫 | Nueva solicitud al servidor web de tipo %s", entry.method)
	color := 0x00AE86 // Green

	if suspicious {
		title = fmt.Sprintf("💫 | Solicitud Sospechosa Rechazada: %s %s", entry.method, entry.path)
		color = 0xFFA500 // Orange
	}

	headers, _ := json.Marshal(entry.headers)
	query := entry.query
	if query == "" {
		query = "{}"
	}

	payload := map[string]interface{}{
		"embeds": []interface{}{map[string]interface{}{
			"title": title,
			"description": fmt.Sprintf(
				"> **Ruta:** `%s`\n> **IP:** `%s`\n> **Headers:** ```%s``` \n> **Query:** ```%s```",
				entry.path,
				entry.ip,
				string(headers),
				query,
			),
			"color":     color,
			"timestamp": time.Now().Format(time.RFC3339),
		}},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(jsonData))
	if err != nil {
		logger.Debug(fmt.Sprintf("Webhook de logs no disponible: %v", err), "WebServer")
		return
	}
	resp.Body.Close()
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	WindowMs    time.Duration
	MaxRequests int
}

// rateLimitMiddleware implements a fixed window limiter per client IP
func (s *Server) rateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	type clientInfo struct {
		count   int
		resetAt time.Time
	}
	var mu sync.Mutex
	clients := make(map[string]*clientInfo)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		info, exists := clients[ip]
		if !exists || now.After(info.resetAt) {
			info = &clientInfo{resetAt: now.Add(config.WindowMs)}
			clients[ip] = info
		}
		info.count++
		count := info.count
		mu.Unlock()

		if count > config.MaxRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Demasiadas solicitudes, por favor intente de nuevo más tarde.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// setupErrorHandlers sets up error handling routes
func (s *Server) setupErrorHandlers() {
	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "La ruta solicitada no existe.",
			"status":  404,
		})
	})

	s.engine.HandleMethodNotAllowed = true
	s.engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":   "Method Not Allowed",
			"message": "El método HTTP no está permitido para esta ruta.",
			"status":  405,
		})
	})
}

// Start starts the web server
func (s *Server) Start(port string) error {
	logger.Info(fmt.Sprintf("🚀 Servidor escuchando en http://localhost:%s", port), "WebServer")
	return s.engine.Run(":" + port)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync(port string) {
	errors.Go(func() {
		if err := s.Start(port); err != nil {
			logger.Error(fmt.Sprintf("Error starting web server: %v", err), "WebServer")
		}
	})
}

// Group creates a new router group
func (s *Server) Group(path string, handlers ...gin.HandlerFunc) *gin.RouterGroup {
	return s.engine.Group(path, handlers...)
}
