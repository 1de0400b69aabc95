package utils

import (
	"fmt"

	"github.com/PancyStudios/GuardBotGo/pkg/discord"
	"github.com/PancyStudios/GuardBotGo/pkg/errors"
	"github.com/PancyStudios/GuardBotGo/pkg/logger"
)

// createSyncCommand creates the /dev sync subcommand, only registered in the
// development guild
func createSyncCommand() *discord.Command {
	return discord.NewCommand(
		"sync",
		"Sincroniza los comandos globales con Discord",
		"dev",
		syncHandler,
	)
}

func syncHandler(ctx *discord.CommandContext) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	errors.Go(func() {
		msg := fmt.Sprintf("✅ **%d comandos sincronizados.**", len(ctx.Client.CommandHandler.GlobalCommands()))
		if err := ctx.Client.CommandHandler.SyncCommands(); err != nil {
			logger.Error(fmt.Sprintf("Error sincronizando comandos: %v", err), "CMD-Sync")
			msg = "❌ **No se pudieron sincronizar los comandos.**"
		}
		if err := ctx.EditReply(msg); err != nil {
			logger.Debug(fmt.Sprintf("No se pudo editar la respuesta: %v", err), "CMD-Sync")
		}
	})
	return nil
}
