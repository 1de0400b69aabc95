// Package main is the entry point for the GuardBot Go application.
// It initializes all systems and starts the Discord bot.
package main

import (
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/PancyStudios/GuardBotGo/internal/commands"
	"github.com/PancyStudios/GuardBotGo/internal/commands/mod"
	"github.com/PancyStudios/GuardBotGo/internal/events"
	"github.com/PancyStudios/GuardBotGo/internal/moderation"
	"github.com/PancyStudios/GuardBotGo/pkg/config"
	"github.com/PancyStudios/GuardBotGo/pkg/database"
	"github.com/PancyStudios/GuardBotGo/pkg/discord"
	"github.com/PancyStudios/GuardBotGo/pkg/errors"
	"github.com/PancyStudios/GuardBotGo/pkg/logger"
	"github.com/PancyStudios/GuardBotGo/pkg/models"
	"github.com/PancyStudios/GuardBotGo/pkg/mqtt"
	"github.com/PancyStudios/GuardBotGo/pkg/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Iniciando GuardBot Go...", "Main")
	logger.Info(fmt.Sprintf("Directorio de trabajo: %s", getCurrentDir()), "Main")

	// Initialize error handler
	var discordClient *discord.ExtendedClient
	errors.Init(cfg.ErrorWebhook, func() {
		if discordClient != nil {
			if err := discordClient.Stop(); err != nil {
				logger.Error(fmt.Sprintf("Error deteniendo el cliente: %v", err), "Main")
			}
		}
	})
	defer errors.Get().Stop()

	// Initialize database. A failed first connection keeps retrying in the
	// background and writes are queued meanwhile.
	db, err := database.Init(cfg.MongoDBURL, cfg.DBName)
	if err != nil {
		logger.Error(fmt.Sprintf("Error connecting to database: %v", err), "Main")
	}
	defer func() {
		if err := db.Disconnect(); err != nil {
			logger.Error(fmt.Sprintf("Error cerrando la base de datos: %v", err), "Main")
		}
	}()

	database.InitGlobalDataManagers(db)
	users := database.NewUserStore(database.GlobalUserDM)
	groups := database.NewGroupStore(database.GlobalGroupDM)
	seedAdmins(users, cfg.Admins)

	// Initialize MQTT
	mqttClientID := "guardbot"
	if !cfg.IsProd() {
		mqttClientID = "guardbot_canary"
	}

	mqttClient := mqtt.Init(
		cfg.MQTTHost,
		cfg.MQTTPort,
		cfg.MQTTUser,
		cfg.MQTTPassword,
		mqttClientID,
		cfg.MQTTTopicPrefix,
	)
	defer mqttClient.Destroy()

	// Initialize Discord client
	discordClient, err = discord.Init(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}

	unwarn := &moderation.Unwarn{
		Users:        users,
		Groups:       groups,
		Members:      discordClient.Gateway,
		Events:       &moderation.TopicPublisher{Publisher: mqttClient, Topic: mqttClient.Topic("moderation", "unwarn")},
		ExpireAfter:  cfg.ExpireWarnsAfter,
		BanThreshold: cfg.NumberOfWarnsToBan,
	}
	mqttClient.On("warns", unwarn.WarnsQuery)

	// Initialize web server
	webServer, err := web.Init(cfg.LogsWebServerHook, cfg.AllowedHosts)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating web server: %v", err), "Main")
		os.Exit(1)
	}
	web.SetupAPIRoutes(webServer, func(id string) (interface{}, error) {
		report, err := unwarn.Report(id)
		if stderrors.Is(err, moderation.ErrUserUnknown) {
			return nil, web.ErrNotFound
		}
		return report, err
	})
	webServer.StartAsync(cfg.Port)

	commands.RegisterAll(discordClient, &mod.Moderation{Users: users, Unwarn: unwarn})
	events.RegisterAll(discordClient, events.Stores{Profiles: users, Groups: groups})

	// Start the bot
	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}
	defer func() {
		if err := discordClient.Stop(); err != nil {
			logger.Error(fmt.Sprintf("Error deteniendo el cliente: %v", err), "Main")
		}
	}()

	logger.Success("GuardBot Go iniciado correctamente!", "Main")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Apagando GuardBot Go...", "Main")
}

// seedAdmins grants admin status to the configured user IDs
func seedAdmins(users *database.UserStore, ids []string) {
	for _, id := range ids {
		if err := users.SetStatus(id, models.StatusAdmin); err != nil {
			logger.Warn(fmt.Sprintf("No se pudo marcar a %s como admin: %v", id, err), "Main")
		}
	}

	admins, err := users.ListAdmins()
	if err != nil {
		logger.Debug(fmt.Sprintf("No se pudo listar admins: %v", err), "Main")
		return
	}
	logger.Info(fmt.Sprintf("Administradores registrados: %d", len(admins)), "Main")
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}
