package mod

import (
	"fmt"
	"strings"

	"github.com/PancyStudios/GuardBotGo/pkg/discord"
	"github.com/PancyStudios/GuardBotGo/pkg/errors"
	"github.com/PancyStudios/GuardBotGo/pkg/logger"
	"github.com/PancyStudios/GuardBotGo/pkg/models"
	"github.com/PancyStudios/GuardBotGo/pkg/parse"
	"github.com/bwmarrin/discordgo"
)

const (
	msgSpecifyUser  = "ℹ️ **Especifica un usuario.**"
	msgUnknownUser  = "❓ **Usuario desconocido**"
	colorWarnsClear = 0x00FF00
	colorWarnsList  = 0xFFA500
)

// createWarnsCommand creates the /mod warns subcommand
func (m *Moderation) createWarnsCommand() *discord.Command {
	return discord.NewCommand(
		"warns",
		"Lista las advertencias activas de un usuario",
		"mod",
		m.warnsHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a consultar",
			Required:    true,
		},
	).RequiresDatabase()
}

// createWarnsTextCommand creates the !warns text command
func (m *Moderation) createWarnsTextCommand() *discord.TextCommand {
	return discord.NewTextCommand(
		"warns",
		"Lista las advertencias activas de un usuario",
		m.warnsTextHandler,
	).RequiresDatabase()
}

// formatWarns lists the active warns of a user, one per line with the date
// that selects it in unwarn
func formatWarns(user *models.User, active []models.Warn, threshold int) string {
	if len(active) == 0 {
		return fmt.Sprintf("%s **no tiene advertencias activas.**", discord.Mention(user.ID))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s **tiene %d/%d advertencias:**\n\n", discord.Mention(user.ID), len(active), threshold)
	for i, w := range active {
		date := w.ISOString()
		if date == "" {
			date = "sin fecha"
		}
		fmt.Fprintf(&b, "> **%d.** `%s` %s\n", i+1, date, discord.EscapeMarkdown(w.Render()))
	}
	return b.String()
}

// lookupWarns resolves a target and formats its active warns. ok is false
// when the caller is not an admin.
func (m *Moderation) lookupWarns(callerID string, targets []string) (text string, count int, ok bool, err error) {
	caller, err := m.caller(callerID)
	if err != nil {
		return "", 0, false, err
	}
	if !caller.IsAdmin() {
		return "", 0, false, nil
	}
	if len(targets) != 1 {
		return msgSpecifyUser, 0, true, nil
	}

	user, err := m.Users.FindUser(parse.Strip(targets[0]))
	if err != nil {
		return "", 0, false, err
	}
	if user == nil {
		return msgUnknownUser, 0, true, nil
	}

	active := m.Unwarn.ActiveWarns(user)
	return formatWarns(user, active, m.Unwarn.BanThreshold), len(active), true, nil
}

func (m *Moderation) warnsHandler(ctx *discord.CommandContext) error {
	var targets []string
	if id := ctx.GetUserIDOption("usuario"); id != "" {
		targets = append(targets, id)
	}

	// Lookups may be slow while the database reconnects
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	errors.Go(func() {
		text, count, ok, err := m.lookupWarns(ctx.User().ID, targets)
		switch {
		case err != nil:
			logger.Error(fmt.Sprintf("Error consultando advertencias: %v", err), "CMD-Warns")
			_ = ctx.EditReply(msgInternalError)
		case !ok:
			_ = ctx.EditReply(msgNotAdmin)
		default:
			color := colorWarnsList
			if count == 0 {
				color = colorWarnsClear
			}
			_, editErr := ctx.Session.InteractionResponseEdit(ctx.Interaction.Interaction, &discordgo.WebhookEdit{
				Embeds: &[]*discordgo.MessageEmbed{{
					Title:       "🔖 - Advertencias",
					Description: text,
					Color:       color,
				}},
			})
			if editErr != nil {
				logger.Debug(fmt.Sprintf("No se pudo editar la respuesta: %v", editErr), "CMD-Warns")
			}
		}
	})
	return nil
}

func (m *Moderation) warnsTextHandler(ctx *discord.MessageContext) error {
	text, _, ok, err := m.lookupWarns(ctx.Author().ID, ctx.Command.Targets)
	if err != nil {
		logger.Error(fmt.Sprintf("Error consultando advertencias: %v", err), "CMD-Warns")
		return ctx.ReplyEphemeral(msgInternalError)
	}
	if !ok {
		return nil
	}
	return ctx.Reply(text)
}
