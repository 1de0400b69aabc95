package utils

import (
	"testing"
	"time"

	"github.com/PancyStudios/GuardBotGo/pkg/discord"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0 segundos"},
		{90 * time.Second, "1 minutos, 30 segundos"},
		{26 * time.Hour, "1 días, 2 horas"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHelpText(t *testing.T) {
	slash := map[string]*discord.Command{
		"mod.unwarn": {Description: "Retira una advertencia"},
		"utils.ping": {Description: "Latencia"},
		"dev.sync":   {Description: "Sincroniza", Category: "dev"},
	}
	text := map[string]*discord.TextCommand{
		"unwarn": {Description: "Retira una advertencia"},
	}

	want := "📖 **Ayuda de GuardBot Go**\n\n**Comandos disponibles:**\n" +
		"• `/mod unwarn` - Retira una advertencia\n" +
		"• `/utils ping` - Latencia\n" +
		"• `!unwarn` - Retira una advertencia"

	if got := helpText("!", slash, text); got != want {
		t.Errorf("helpText() = %q, want %q", got, want)
	}
}
