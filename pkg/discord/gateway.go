package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// membershipSession is the part of *discordgo.Session the Gateway uses
type membershipSession interface {
	GuildBanDelete(guildID, userID string, options ...discordgo.RequestOption) error
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Gateway lifts bans and sends direct messages on behalf of the bot
type Gateway struct {
	session membershipSession
}

// NewGateway creates a Gateway over a Discord session
func NewGateway(s membershipSession) *Gateway {
	return &Gateway{session: s}
}

// Unban removes the ban of a user in a guild
func (g *Gateway) Unban(guildID, userID string) error {
	if err := g.session.GuildBanDelete(guildID, userID); err != nil {
		return fmt.Errorf("unban %s in %s: %w", userID, guildID, err)
	}
	return nil
}

// Notify sends a direct message to a user. It fails when the user does not
// accept DMs from the bot.
func (g *Gateway) Notify(userID, text string) error {
	ch, err := g.session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("open dm with %s: %w", userID, err)
	}
	if _, err := g.session.ChannelMessageSend(ch.ID, text); err != nil {
		return fmt.Errorf("dm %s: %w", userID, err)
	}
	return nil
}
