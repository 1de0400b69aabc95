package events

import (
	"fmt"
	"sync"

	"github.com/PancyStudios/GuardBotGo/pkg/discord"
	"github.com/PancyStudios/GuardBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

type handlers struct {
	stores Stores

	// last stored profile per user, to skip redundant writes
	mu   sync.Mutex
	seen map[string]string
}

func newHandlers(stores Stores) *handlers {
	return &handlers{stores: stores, seen: make(map[string]string)}
}

// RegisterMemberEvents registers the member join and update handlers
func RegisterMemberEvents(client *discord.ExtendedClient, h *handlers) {
	client.EventHandler.OnGuildMemberAdd(func(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
		h.trackUser(m.User)
	})
	client.EventHandler.OnGuildMemberUpdate(func(_ *discordgo.Session, m *discordgo.GuildMemberUpdate) {
		h.trackUser(m.User)
	})
}

// trackUser stores the profile of a user when it changed since last seen
func (h *handlers) trackUser(u *discordgo.User) {
	if u == nil || u.Bot || h.stores.Profiles == nil {
		return
	}

	key := u.GlobalName + "\x00" + u.Username
	h.mu.Lock()
	if h.seen[u.ID] == key {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	if err := h.stores.Profiles.UpsertProfile(u.ID, u.GlobalName, "", u.Username); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo guardar el perfil de %s: %v", u.ID, err), "Member")
		return
	}

	h.mu.Lock()
	h.seen[u.ID] = key
	h.mu.Unlock()
}
