// Package commands registers every bot command. Commands are organized in
// subdirectories by category.
package commands

import (
	"github.com/PancyStudios/GuardBotGo/internal/commands/mod"
	"github.com/PancyStudios/GuardBotGo/internal/commands/utils"
	"github.com/PancyStudios/GuardBotGo/pkg/discord"
)

// RegisterAll registers all commands with the Discord client
func RegisterAll(client *discord.ExtendedClient, moderation *mod.Moderation) {
	// /utils ping, /utils status, /utils help
	utils.RegisterUtilsCommands(client)

	// /mod unwarn, /mod warns and their text versions
	mod.RegisterModCommands(client, moderation)
}
