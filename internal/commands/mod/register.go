// Package mod provides moderation commands organized as subcommands under /mod
// plus their prefixed text versions. Each command is in its own file.
package mod

import (
	"github.com/PancyStudios/GuardBotGo/internal/moderation"
	"github.com/PancyStudios/GuardBotGo/pkg/discord"
	"github.com/PancyStudios/GuardBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// UserFinder resolves Discord users to stored users
type UserFinder interface {
	FindUser(id string) (*models.User, error)
}

// Moderation holds what the moderation commands need
type Moderation struct {
	Users  UserFinder
	Unwarn *moderation.Unwarn
}

// RegisterModCommands registers all moderation commands as /mod subcommands
// and as text commands
func RegisterModCommands(client *discord.ExtendedClient, m *Moderation) {
	modGroup := client.CommandHandler.BuildCommandGroup(
		"mod",
		"Comandos de moderación",
		discordgo.PermissionBanMembers,
		m.createUnwarnCommand(),
		m.createWarnsCommand(),
	)
	client.CommandHandler.AddGlobalCommand(modGroup)

	client.CommandHandler.RegisterTextCommand(m.createUnwarnTextCommand())
	client.CommandHandler.RegisterTextCommand(m.createWarnsTextCommand())
}

// caller resolves the stored profile of the Discord user running a command.
// Unknown users resolve to nil, which is never an admin.
func (m *Moderation) caller(id string) (*models.User, error) {
	return m.Users.FindUser(id)
}
