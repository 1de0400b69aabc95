package events

import (
	"fmt"

	"github.com/PancyStudios/GuardBotGo/pkg/discord"
	"github.com/PancyStudios/GuardBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterGuildEvents registers the guild join and leave handlers
func RegisterGuildEvents(client *discord.ExtendedClient, h *handlers) {
	client.EventHandler.OnGuildCreate(func(_ *discordgo.Session, g *discordgo.GuildCreate) {
		h.guildJoined(g.Guild)
	})
	client.EventHandler.OnGuildDelete(func(_ *discordgo.Session, g *discordgo.GuildDelete) {
		h.guildLeft(g.Guild)
	})
}

// guildJoined adds a guild to the directory. Discord sends a GuildCreate for
// every guild on connect, which keeps the directory in sync after downtime.
func (h *handlers) guildJoined(g *discordgo.Guild) {
	if g == nil || h.stores.Groups == nil {
		return
	}
	if err := h.stores.Groups.AddGroup(g.ID, g.Name); err != nil {
		logger.Error(fmt.Sprintf("Error registrando servidor %s: %v", g.ID, err), "Guild")
		return
	}
	logger.Debug(fmt.Sprintf("Servidor registrado: %s (ID: %s)", g.Name, g.ID), "Guild")
}

// guildLeft removes a guild from the directory. Outages also arrive as
// GuildDelete, flagged unavailable, and are ignored.
func (h *handlers) guildLeft(g *discordgo.Guild) {
	if g == nil || g.Unavailable || h.stores.Groups == nil {
		return
	}
	if err := h.stores.Groups.RemoveGroup(g.ID); err != nil {
		logger.Error(fmt.Sprintf("Error eliminando servidor %s: %v", g.ID, err), "Guild")
		return
	}
	logger.Info(fmt.Sprintf("➖ Bot removido del servidor ID: %s", g.ID), "Guild")
}
