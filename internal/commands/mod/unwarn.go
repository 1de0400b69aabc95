package mod

import (
	"fmt"
	"strings"

	"github.com/PancyStudios/GuardBotGo/internal/moderation"
	"github.com/PancyStudios/GuardBotGo/pkg/discord"
	"github.com/PancyStudios/GuardBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

const (
	msgNotAdmin      = "❌ **Solo los administradores del bot pueden usar este comando.**"
	msgInternalError = "❌ **Error al consultar la base de datos.**"
)

// createUnwarnCommand creates the /mod unwarn subcommand
func (m *Moderation) createUnwarnCommand() *discord.Command {
	return discord.NewCommand(
		"unwarn",
		"Retira la última advertencia activa de un usuario",
		"mod",
		m.unwarnHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario al que se le retira la advertencia",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "fecha",
			Description:  "Fecha de la advertencia (YYYY-MM-DD, YYYY-MM-DD HH:MM...)",
			Required:     false,
			Autocomplete: true,
		},
	).RequiresDatabase().WithAutoComplete(m.unwarnAutoComplete)
}

// createUnwarnTextCommand creates the !unwarn text command
func (m *Moderation) createUnwarnTextCommand() *discord.TextCommand {
	return discord.NewTextCommand(
		"unwarn",
		"Retira la última advertencia activa de un usuario",
		m.unwarnTextHandler,
	).RequiresDatabase()
}

// unwarn runs the operation on behalf of callerID. A nil reply means the
// caller is not allowed to run it.
func (m *Moderation) unwarn(callerID string, targets []string, reason string) (*moderation.Reply, error) {
	caller, err := m.caller(callerID)
	if err != nil {
		return nil, fmt.Errorf("find caller: %w", err)
	}
	return m.Unwarn.Execute(moderation.Request{
		Caller:  caller,
		Reason:  reason,
		Targets: targets,
	})
}

func (m *Moderation) unwarnHandler(ctx *discord.CommandContext) error {
	var targets []string
	if id := ctx.GetUserIDOption("usuario"); id != "" {
		targets = append(targets, id)
	}

	reply, err := m.unwarn(ctx.User().ID, targets, ctx.GetStringOption("fecha"))
	if err != nil {
		logger.Error(fmt.Sprintf("Error en unwarn: %v", err), "CMD-Unwarn")
		return ctx.ReplyTransient(msgInternalError)
	}
	// Discord expects an answer to every interaction
	if reply == nil {
		return ctx.ReplyTransient(msgNotAdmin)
	}

	if reply.Ephemeral {
		return ctx.ReplyTransient(reply.Text)
	}
	return ctx.Reply(reply.Text)
}

func (m *Moderation) unwarnTextHandler(ctx *discord.MessageContext) error {
	reply, err := m.unwarn(ctx.Author().ID, ctx.Command.Targets, ctx.Command.Reason)
	if err != nil {
		logger.Error(fmt.Sprintf("Error en unwarn: %v", err), "CMD-Unwarn")
		return ctx.ReplyEphemeral(msgInternalError)
	}
	if reply == nil {
		return nil
	}

	if reply.Ephemeral {
		return ctx.ReplyEphemeral(reply.Text)
	}
	return ctx.Reply(reply.Text)
}

// unwarnAutoComplete suggests the dates of the target's active warns, newest
// first
func (m *Moderation) unwarnAutoComplete(ctx *discord.CommandContext) {
	choices, err := m.dateChoices(ctx.User().ID, ctx.GetUserIDOption("usuario"), ctx.FocusedValue())
	if err != nil {
		logger.Debug(fmt.Sprintf("Error en autocompletado de unwarn: %v", err), "CMD-Unwarn")
	}
	if err := ctx.Suggest(choices); err != nil {
		logger.Debug(fmt.Sprintf("No se pudo responder el autocompletado: %v", err), "CMD-Unwarn")
	}
}

func (m *Moderation) dateChoices(callerID, targetID, typed string) ([]*discordgo.ApplicationCommandOptionChoice, error) {
	choices := []*discordgo.ApplicationCommandOptionChoice{}
	if targetID == "" {
		return choices, nil
	}

	caller, err := m.caller(callerID)
	if err != nil || caller == nil || !caller.IsAdmin() {
		return choices, err
	}
	user, err := m.Users.FindUser(targetID)
	if err != nil || user == nil {
		return choices, err
	}

	typed = strings.ToUpper(strings.Replace(strings.TrimSpace(typed), " ", "T", 1))
	active := m.Unwarn.ActiveWarns(user)
	for i := len(active) - 1; i >= 0; i-- {
		date := active[i].ISOString()
		if date == "" || !strings.HasPrefix(date, typed) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  truncate(date+" "+active[i].Render(), 100),
			Value: date,
		})
	}
	return choices, nil
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
