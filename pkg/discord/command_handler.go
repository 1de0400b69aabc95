package discord

import (
	"fmt"

	"github.com/PancyStudios/GuardBotGo/pkg/config"
	"github.com/PancyStudios/GuardBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// CommandHandler manages command registration
type CommandHandler struct {
	client           *ExtendedClient
	slashCommands    []*discordgo.ApplicationCommand
	slashCommandsDev []*discordgo.ApplicationCommand
}

// NewCommandHandler creates a new CommandHandler
func NewCommandHandler(client *ExtendedClient) *CommandHandler {
	return &CommandHandler{
		client:           client,
		slashCommands:    make([]*discordgo.ApplicationCommand, 0),
		slashCommandsDev: make([]*discordgo.ApplicationCommand, 0),
	}
}

// RegisterTextCommand adds a prefixed text command
func (ch *CommandHandler) RegisterTextCommand(cmd *TextCommand) {
	ch.client.TextCommands.Set(cmd.Name, cmd)
	logger.Debug("Comando de texto registrado: "+ch.client.Prefix+cmd.Name, "CommandHandler")
}

// BuildCommandGroup creates a command group with subcommands. perms, when
// not zero, restricts who sees the group by default.
func (ch *CommandHandler) BuildCommandGroup(name, description string, perms int64, subcommands ...*Command) *discordgo.ApplicationCommand {
	options := make([]*discordgo.ApplicationCommandOption, 0, len(subcommands))

	for _, cmd := range subcommands {
		ch.client.Commands.Set(name+"."+cmd.Name, cmd)

		options = append(options, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        cmd.Name,
			Description: cmd.Description,
			Options:     cmd.Options,
		})
	}

	appCmd := &discordgo.ApplicationCommand{
		Name:        name,
		Description: description,
		Options:     options,
	}
	if perms != 0 {
		appCmd.DefaultMemberPermissions = &perms
	}
	return appCmd
}

// AddGlobalCommand adds a command to the global command list
func (ch *CommandHandler) AddGlobalCommand(cmd *discordgo.ApplicationCommand) {
	ch.slashCommands = append(ch.slashCommands, cmd)
}

// AddDevCommand adds a command to the dev command list
func (ch *CommandHandler) AddDevCommand(cmd *discordgo.ApplicationCommand) {
	ch.slashCommandsDev = append(ch.slashCommandsDev, cmd)
}

// GlobalCommands returns the global commands known to the handler
func (ch *CommandHandler) GlobalCommands() []*discordgo.ApplicationCommand {
	return ch.slashCommands
}

func (ch *CommandHandler) appID() string {
	return ch.client.Session.State.User.ID
}

// RegisterCommands registers all slash commands with Discord
func (ch *CommandHandler) RegisterCommands() {
	cfg := config.Get()

	logger.Info("🔄 Registrando comandos globales...", "CommandHandler")

	for _, cmd := range ch.slashCommands {
		if _, err := ch.client.Session.ApplicationCommandCreate(ch.appID(), "", cmd); err != nil {
			logger.Error("Error registrando comando "+cmd.Name+": "+err.Error(), "CommandHandler")
		}
	}

	logger.Success("✅ Comandos globales registrados.", "CommandHandler")

	if cfg.DevGuildID != "" && len(ch.slashCommandsDev) > 0 {
		logger.Info("🔄 Registrando comandos de desarrollo en el servidor "+cfg.DevGuildID+"...", "CommandHandler")

		for _, cmd := range ch.slashCommandsDev {
			if _, err := ch.client.Session.ApplicationCommandCreate(ch.appID(), cfg.DevGuildID, cmd); err != nil {
				logger.Error("Error registrando comando de desarrollo "+cmd.Name+": "+err.Error(), "CommandHandler")
			}
		}

		logger.Success("✅ Comandos de desarrollo registrados.", "CommandHandler")
	}
}

// ListGlobalCommands returns the global commands registered with Discord
func (ch *CommandHandler) ListGlobalCommands() ([]*discordgo.ApplicationCommand, error) {
	return ch.client.Session.ApplicationCommands(ch.appID(), "")
}

// ListGuildCommands returns the commands registered in a guild
func (ch *CommandHandler) ListGuildCommands(guildID string) ([]*discordgo.ApplicationCommand, error) {
	return ch.client.Session.ApplicationCommands(ch.appID(), guildID)
}

// UnregisterCommands removes all global commands from Discord
func (ch *CommandHandler) UnregisterCommands() error {
	return ch.unregister("")
}

// UnregisterGuildCommands removes all commands of a guild
func (ch *CommandHandler) UnregisterGuildCommands(guildID string) error {
	return ch.unregister(guildID)
}

func (ch *CommandHandler) unregister(guildID string) error {
	commands, err := ch.client.Session.ApplicationCommands(ch.appID(), guildID)
	if err != nil {
		return err
	}

	for _, cmd := range commands {
		if err := ch.client.Session.ApplicationCommandDelete(ch.appID(), guildID, cmd.ID); err != nil {
			logger.Error("Error eliminando comando "+cmd.Name+": "+err.Error(), "CommandHandler")
		}
	}

	logger.Success(fmt.Sprintf("%d comandos eliminados.", len(commands)), "CommandHandler")
	return nil
}

// SyncCommands replaces the global commands on Discord with the ones known to
// the handler, dropping stale ones
func (ch *CommandHandler) SyncCommands() error {
	return ch.sync("", ch.slashCommands)
}

// SyncGuildCommands replaces the commands of a guild with the development
// commands
func (ch *CommandHandler) SyncGuildCommands(guildID string) error {
	return ch.sync(guildID, ch.slashCommandsDev)
}

func (ch *CommandHandler) sync(guildID string, cmds []*discordgo.ApplicationCommand) error {
	created, err := ch.client.Session.ApplicationCommandBulkOverwrite(ch.appID(), guildID, cmds)
	if err != nil {
		return err
	}
	scope := "globales"
	if guildID != "" {
		scope = "del servidor " + guildID
	}
	logger.Success(fmt.Sprintf("%d comandos %s sincronizados.", len(created), scope), "CommandHandler")
	return nil
}
