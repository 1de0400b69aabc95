package events

import (
	"github.com/PancyStudios/GuardBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// RegisterMessageEvents registers the message handlers. Text commands are
// dispatched by the client itself.
func RegisterMessageEvents(client *discord.ExtendedClient, h *handlers) {
	client.EventHandler.OnMessageCreate(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		h.trackUser(m.Author)
		if m.ReferencedMessage != nil {
			h.trackUser(m.ReferencedMessage.Author)
		}
	})
}
