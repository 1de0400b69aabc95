// Package events provides the Discord event handlers of the bot, organized
// by category (ready, guild, member, message).
package events

import (
	"fmt"

	"github.com/PancyStudios/GuardBotGo/pkg/discord"
	"github.com/PancyStudios/GuardBotGo/pkg/logger"
)

// ProfileStore keeps user profiles fresh so targets resolve by username
type ProfileStore interface {
	UpsertProfile(id, firstName, lastName, username string) error
}

// GroupRegistry keeps the directory of managed guilds
type GroupRegistry interface {
	AddGroup(id, title string) error
	RemoveGroup(id string) error
}

// Stores holds what the event handlers write to
type Stores struct {
	Profiles ProfileStore
	Groups   GroupRegistry
}

// RegisterAll registers all events with the Discord client
func RegisterAll(client *discord.ExtendedClient, stores Stores) {
	logger.System("📋 Registrando eventos del bot...", "Events")

	h := newHandlers(stores)

	RegisterReadyEvent(client)
	RegisterGuildEvents(client, h)
	RegisterMemberEvents(client, h)
	RegisterMessageEvents(client, h)

	logger.Success(fmt.Sprintf("✅ %d eventos registrados correctamente", client.EventHandler.Count()), "Events")
}
