package utils

import (
	"fmt"

	"github.com/PancyStudios/GuardBotGo/pkg/discord"
)

// createPingCommand creates the /utils ping subcommand
func createPingCommand() *discord.Command {
	return discord.NewCommand(
		"ping",
		"Comprueba la latencia del bot",
		"utils",
		pingHandler,
	)
}

func pingHandler(ctx *discord.CommandContext) error {
	latency := ctx.Client.Session.HeartbeatLatency().Milliseconds()
	return ctx.Reply(fmt.Sprintf("🏓 Pong! Latencia: %dms", latency))
}
