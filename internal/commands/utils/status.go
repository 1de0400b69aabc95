package utils

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/PancyStudios/GuardBotGo/pkg/config"
	"github.com/PancyStudios/GuardBotGo/pkg/database"
	"github.com/PancyStudios/GuardBotGo/pkg/discord"
	"github.com/PancyStudios/GuardBotGo/pkg/errors"
	"github.com/bwmarrin/discordgo"
)

// createStatusCommand creates the /utils status subcommand
func createStatusCommand() *discord.Command {
	return discord.NewCommand(
		"status",
		"Muestra el estado del bot",
		"utils",
		statusHandler,
	)
}

func statusHandler(ctx *discord.CommandContext) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	errors.Go(func() {
		db := database.Get()
		dbStatus := "🔴 | Desconectado"
		pending := 0
		if db != nil {
			dbStatus, _ = db.GetStatus()
			pending = db.PendingWrites()
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		embed := &discordgo.MessageEmbed{
			Title: "📊 Estado del Bot",
			Color: 0x5865F2,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "🤖 Versión", Value: config.Version, Inline: true},
				{Name: "🗄️ Base de datos", Value: dbStatus, Inline: true},
				{Name: "📝 Escrituras pendientes", Value: fmt.Sprintf("%d", pending), Inline: true},
				{Name: "🏠 Servidores", Value: fmt.Sprintf("%d", ctx.Client.GuildCount()), Inline: true},
				{Name: "🖥 Uso de RAM", Value: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024), Inline: true},
				{Name: "⏱ Uptime", Value: formatDuration(time.Since(ctx.Client.StartTime)), Inline: true},
			},
			Timestamp: time.Now().Format(time.RFC3339),
		}

		_, _ = ctx.Session.InteractionResponseEdit(ctx.Interaction.Interaction, &discordgo.WebhookEdit{
			Embeds: &[]*discordgo.MessageEmbed{embed},
		})
	})
	return nil
}

// formatDuration formats a time.Duration into a human-readable string
func formatDuration(dur time.Duration) string {
	days := int(dur.Hours() / 24)
	hours := int(dur.Hours()) % 24
	minutes := int(dur.Minutes()) % 60
	seconds := int(dur.Seconds()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d días", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d horas", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d minutos", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d segundos", seconds))
	}

	return strings.Join(parts, ", ")
}
