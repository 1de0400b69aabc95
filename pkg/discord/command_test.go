package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

// TestCommandCreation verifies that commands can be created with the builder pattern
func TestCommandCreation(t *testing.T) {
	handler := func(ctx *CommandContext) error {
		return nil
	}

	cmd := NewCommand("unwarn", "Retira una advertencia", "mod", handler)

	if cmd == nil {
		t.Fatal("NewCommand returned nil")
	}

	if cmd.Name != "unwarn" {
		t.Errorf("Name = %v, want %v", cmd.Name, "unwarn")
	}

	if cmd.Category != "mod" {
		t.Errorf("Category = %v, want %v", cmd.Category, "mod")
	}

	if cmd.Run == nil {
		t.Error("Run function is nil")
	}
}

// TestCommandWithOptions verifies the WithOptions builder method
func TestCommandWithOptions(t *testing.T) {
	handler := func(ctx *CommandContext) error {
		return nil
	}

	option := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "usuario",
		Description: "Usuario",
		Required:    true,
	}

	cmd := NewCommand("unwarn", "Retira una advertencia", "mod", handler).
		WithOptions(option).
		RequiresDatabase()

	if len(cmd.Options) != 1 {
		t.Fatalf("Options length = %v, want %v", len(cmd.Options), 1)
	}

	if cmd.Options[0].Name != "usuario" {
		t.Errorf("Option name = %v, want %v", cmd.Options[0].Name, "usuario")
	}

	if !cmd.RequiresDB {
		t.Error("RequiresDB should be true after calling RequiresDatabase()")
	}
}

// TestBuildCommandGroup verifies subcommands are registered under dotted names
func TestBuildCommandGroup(t *testing.T) {
	handler := func(ctx *CommandContext) error {
		return nil
	}
	client := &ExtendedClient{Commands: NewRegistry[*Command](), TextCommands: NewRegistry[*TextCommand]()}
	ch := NewCommandHandler(client)

	group := ch.BuildCommandGroup("mod", "Moderación", discordgo.PermissionBanMembers,
		NewCommand("unwarn", "Retira una advertencia", "mod", handler),
		NewCommand("warns", "Lista advertencias", "mod", handler),
	)

	if len(group.Options) != 2 {
		t.Fatalf("Options length = %v, want 2", len(group.Options))
	}
	if group.Options[0].Type != discordgo.ApplicationCommandOptionSubCommand {
		t.Errorf("Option type = %v, want subcommand", group.Options[0].Type)
	}
	if group.DefaultMemberPermissions == nil || *group.DefaultMemberPermissions != discordgo.PermissionBanMembers {
		t.Errorf("DefaultMemberPermissions = %v, want %v", group.DefaultMemberPermissions, discordgo.PermissionBanMembers)
	}
	if _, ok := client.Commands.Get("mod.warns"); !ok {
		t.Error("mod.warns was not registered")
	}

	open := ch.BuildCommandGroup("utils", "Utilidades", 0)
	if open.DefaultMemberPermissions != nil {
		t.Error("DefaultMemberPermissions should be nil without permissions")
	}
}

func TestCommandName(t *testing.T) {
	tests := []struct {
		name string
		data discordgo.ApplicationCommandInteractionData
		want string
	}{
		{
			name: "top level",
			data: discordgo.ApplicationCommandInteractionData{Name: "ping"},
			want: "ping",
		},
		{
			name: "subcommand",
			data: discordgo.ApplicationCommandInteractionData{
				Name: "mod",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: "unwarn", Type: discordgo.ApplicationCommandOptionSubCommand},
				},
			},
			want: "mod.unwarn",
		},
		{
			name: "subcommand group",
			data: discordgo.ApplicationCommandInteractionData{
				Name: "mod",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{
						Name: "warns",
						Type: discordgo.ApplicationCommandOptionSubCommandGroup,
						Options: []*discordgo.ApplicationCommandInteractionDataOption{
							{Name: "list", Type: discordgo.ApplicationCommandOptionSubCommand},
						},
					},
				},
			},
			want: "mod.warns.list",
		},
		{
			name: "plain option",
			data: discordgo.ApplicationCommandInteractionData{
				Name: "ping",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: "x", Type: discordgo.ApplicationCommandOptionString, Value: "y"},
				},
			},
			want: "ping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := commandName(tt.data); got != tt.want {
				t.Errorf("commandName() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry[*TextCommand]()
	r.Set("unwarn", NewTextCommand("unwarn", "", nil))

	if r.Size() != 1 {
		t.Fatalf("Size() = %v, want 1", r.Size())
	}
	if _, ok := r.Get("unwarn"); !ok {
		t.Error("Get(unwarn) not found")
	}
	if _, ok := r.Get("warn"); ok {
		t.Error("Get(warn) should not be found")
	}

	all := r.All()
	delete(all, "unwarn")
	if r.Size() != 1 {
		t.Error("All() must return a copy")
	}
}

// TestClientIntents verifies the gateway receives ban and member events
func TestClientIntents(t *testing.T) {
	c, err := NewClient("token")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	want := []discordgo.Intent{
		discordgo.IntentsGuilds,
		discordgo.IntentsGuildMembers,
		discordgo.IntentGuildModeration,
		discordgo.IntentsMessageContent,
	}
	for _, intent := range want {
		if c.Session.Identify.Intents&intent == 0 {
			t.Errorf("Intents = %b, missing %b", c.Session.Identify.Intents, intent)
		}
	}
}

// TestCommandLiteral verifies every Command field can be set by name
func TestCommandLiteral(t *testing.T) {
	cmd := Command{
		Name:         "unwarn",
		Description:  "Retira una advertencia",
		Category:     "mod",
		RequiresDB:   true,
		Run:          func(ctx *CommandContext) error { return nil },
		AutoComplete: func(ctx *CommandContext) {},
	}

	if !cmd.RequiresDB || cmd.Run == nil || cmd.AutoComplete == nil {
		t.Errorf("Command literal lost fields: %+v", cmd)
	}
}
