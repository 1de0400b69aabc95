package events

import (
	"fmt"

	"github.com/PancyStudios/GuardBotGo/pkg/discord"
	"github.com/PancyStudios/GuardBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterReadyEvent registers the ready event handler
func RegisterReadyEvent(client *discord.ExtendedClient) {
	prefix := client.Prefix
	client.EventHandler.OnReady(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Success(fmt.Sprintf("✅ Bot conectado: %s", r.User.Username), "Ready")
		logger.Info(fmt.Sprintf("📊 Conectado a %d servidores", len(r.Guilds)), "Ready")

		if err := s.UpdateWatchStatus(0, fmt.Sprintf("%sunwarn | /mod", prefix)); err != nil {
			logger.Error(fmt.Sprintf("Error estableciendo estado: %v", err), "Ready")
			return
		}

		logger.Debug("Estado del bot establecido correctamente", "Ready")
	})
}
