package discord

import (
	"github.com/PancyStudios/GuardBotGo/pkg/parse"
	"github.com/bwmarrin/discordgo"
)

// TextCommand is a command invoked with the configured prefix in a channel
type TextCommand struct {
	Name        string
	Description string
	RequiresDB  bool
	Run         TextRunFunc
}

// TextRunFunc is the function type for text command execution
type TextRunFunc func(ctx *MessageContext) error

// NewTextCommand creates a new TextCommand
func NewTextCommand(name, description string, run TextRunFunc) *TextCommand {
	return &TextCommand{
		Name:        name,
		Description: description,
		Run:         run,
	}
}

// RequiresDatabase marks the command as requiring database access
func (c *TextCommand) RequiresDatabase() *TextCommand {
	c.RequiresDB = true
	return c
}

// MessageContext provides context for text command execution
type MessageContext struct {
	Session *discordgo.Session
	Message *discordgo.MessageCreate
	Client  *ExtendedClient
	Command parse.Command
}

// Author returns the user who sent the command
func (ctx *MessageContext) Author() *discordgo.User {
	return ctx.Message.Author
}

func (ctx *MessageContext) send(content string) (*discordgo.Message, error) {
	return ctx.Session.ChannelMessageSendComplex(ctx.Message.ChannelID, &discordgo.MessageSend{
		Content:         content,
		Reference:       ctx.Message.Reference(),
		AllowedMentions: userMentionsOnly,
	})
}

// Reply answers the command message
func (ctx *MessageContext) Reply(content string) error {
	_, err := ctx.send(content)
	return err
}

// ReplyEphemeral answers the command message and schedules the answer for
// deletion
func (ctx *MessageContext) ReplyEphemeral(content string) error {
	msg, err := ctx.send(content)
	if err != nil {
		return err
	}
	if ctx.Client != nil {
		ctx.Client.Scheduler.ScheduleMessage(msg.ChannelID, msg.ID)
	}
	return nil
}
