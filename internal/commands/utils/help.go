package utils

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PancyStudios/GuardBotGo/pkg/discord"
)

// createHelpCommand creates the /utils help subcommand
func createHelpCommand() *discord.Command {
	return discord.NewCommand(
		"help",
		"Muestra información de ayuda",
		"utils",
		helpHandler,
	)
}

func helpHandler(ctx *discord.CommandContext) error {
	return ctx.ReplyEphemeral(helpText(ctx.Client.Prefix, ctx.Client.Commands.All(), ctx.Client.TextCommands.All()))
}

// helpText lists every registered command, slash commands first. Development
// guild commands are left out.
func helpText(prefix string, slash map[string]*discord.Command, text map[string]*discord.TextCommand) string {
	var b strings.Builder
	b.WriteString("📖 **Ayuda de GuardBot Go**\n\n**Comandos disponibles:**\n")

	for _, name := range sortedKeys(slash) {
		if slash[name].Category == "dev" {
			continue
		}
		fmt.Fprintf(&b, "• `/%s` - %s\n", strings.ReplaceAll(name, ".", " "), slash[name].Description)
	}
	for _, name := range sortedKeys(text) {
		fmt.Fprintf(&b, "• `%s%s` - %s\n", prefix, name, text[name].Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
