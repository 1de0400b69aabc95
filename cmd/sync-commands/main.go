// Package main syncs the bot's Discord application commands without starting
// the bot.
//
// Usage:
//
//	go run ./cmd/sync-commands [-list | -clean | -sync] [-guild <id>]
//
// Without -guild the global commands are targeted; with it, the development
// commands of that guild.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/PancyStudios/GuardBotGo/internal/commands"
	"github.com/PancyStudios/GuardBotGo/internal/commands/mod"
	"github.com/PancyStudios/GuardBotGo/pkg/config"
	"github.com/PancyStudios/GuardBotGo/pkg/discord"
	"github.com/PancyStudios/GuardBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

const tag = "SyncCommands"

func main() {
	listCmd := flag.Bool("list", false, "List all registered commands")
	cleanCmd := flag.Bool("clean", false, "Remove all commands without registering new ones")
	guildID := flag.String("guild", "", "Target a specific guild (leave empty for global)")
	flag.Bool("sync", true, "Sync commands (remove stale, register current)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Iniciando utilidad de sincronización de comandos...", tag)

	client, err := discord.NewClient(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), tag)
		os.Exit(1)
	}

	if err := client.Session.Open(); err != nil {
		logger.Critical(fmt.Sprintf("Error connecting to Discord: %v", err), tag)
		os.Exit(1)
	}
	defer client.Session.Close()

	logger.Success("Conectado a Discord", tag)

	// Handlers never run here, so the moderation dependencies stay empty.
	commands.RegisterAll(client, &mod.Moderation{})

	switch {
	case *listCmd:
		err = listCommands(client.CommandHandler, *guildID)
	case *cleanCmd:
		logger.Info("🧹 Eliminando todos los comandos...", tag)
		if *guildID != "" {
			err = client.CommandHandler.UnregisterGuildCommands(*guildID)
		} else {
			err = client.CommandHandler.UnregisterCommands()
		}
	default:
		logger.Info("🔄 Sincronizando comandos...", tag)
		if *guildID != "" {
			err = client.CommandHandler.SyncGuildCommands(*guildID)
		} else {
			err = client.CommandHandler.SyncCommands()
		}
	}

	if err != nil {
		logger.Error(fmt.Sprintf("La operación falló: %v", err), tag)
		os.Exit(1)
	}
	logger.Success("Operación completada exitosamente", tag)
}

// listCommands logs the commands registered with Discord
func listCommands(ch *discord.CommandHandler, guildID string) error {
	var (
		cmds []*discordgo.ApplicationCommand
		err  error
	)
	if guildID != "" {
		logger.Info(fmt.Sprintf("📋 Comandos del servidor %s:", guildID), tag)
		cmds, err = ch.ListGuildCommands(guildID)
	} else {
		logger.Info("📋 Comandos globales:", tag)
		cmds, err = ch.ListGlobalCommands()
	}
	if err != nil {
		return err
	}

	if len(cmds) == 0 {
		logger.Info("No hay comandos registrados", tag)
		return nil
	}
	for i, cmd := range cmds {
		logger.Info(fmt.Sprintf("  %d. /%s - %s (ID: %s)", i+1, cmd.Name, cmd.Description, cmd.ID), tag)
	}
	return nil
}
