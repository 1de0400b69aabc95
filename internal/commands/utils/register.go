// Package utils provides the /utils commands (latency, status, help) and the
// development guild /dev group.
package utils

import (
	"github.com/PancyStudios/GuardBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// RegisterUtilsCommands registers the utility commands as /utils subcommands
func RegisterUtilsCommands(client *discord.ExtendedClient) {
	group := client.CommandHandler.BuildCommandGroup(
		"utils",
		"Comandos de utilidad",
		0,
		createPingCommand(),
		createStatusCommand(),
		createHelpCommand(),
	)

	client.CommandHandler.AddGlobalCommand(group)

	dev := client.CommandHandler.BuildCommandGroup(
		"dev",
		"Herramientas de desarrollo",
		discordgo.PermissionAdministrator,
		createSyncCommand(),
	)
	client.CommandHandler.AddDevCommand(dev)
}
