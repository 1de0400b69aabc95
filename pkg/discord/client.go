// Package discord provides the Discord bot client and related structures.
// It wraps discordgo with slash command, text command and event handling.
package discord

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/GuardBotGo/pkg/config"
	"github.com/PancyStudios/GuardBotGo/pkg/database"
	"github.com/PancyStudios/GuardBotGo/pkg/errors"
	"github.com/PancyStudios/GuardBotGo/pkg/logger"
	"github.com/PancyStudios/GuardBotGo/pkg/parse"
	"github.com/bwmarrin/discordgo"
)

const msgDatabaseOffline = "⚠️ **La base de datos no está disponible. Intenta más tarde.**"

// discordgo.Logger is a function, not an interface
func init() {
	discordgo.Logger = func(msgL int, caller int, format string, a ...interface{}) {
		logger.Info(fmt.Sprintf(format, a...), "DiscordGo")
	}
}

// ExtendedClient wraps discordgo.Session with additional functionality
type ExtendedClient struct {
	Session        *discordgo.Session
	Commands       *Registry[*Command]
	TextCommands   *Registry[*TextCommand]
	CommandHandler *CommandHandler
	EventHandler   *EventHandler
	Scheduler      *DeletionScheduler
	Gateway        *Gateway
	Prefix         string
	StartTime      time.Time
	mu             sync.RWMutex
	isReady        bool
}

// Registry holds commands by name
type Registry[T any] struct {
	items map[string]T
	mu    sync.RWMutex
}

// NewRegistry creates an empty Registry
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{items: make(map[string]T)}
}

// Set adds or updates an entry
func (r *Registry[T]) Set(name string, v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[name] = v
}

// Get retrieves an entry by name
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[name]
	return v, ok
}

// Size returns the number of entries
func (r *Registry[T]) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// All returns a copy of every entry
func (r *Registry[T]) All() map[string]T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[string]T, len(r.items))
	for k, v := range r.items {
		result[k] = v
	}
	return result
}

var (
	client *ExtendedClient
	once   sync.Once
)

// Init initializes the global Discord client
func Init(token string) (*ExtendedClient, error) {
	var err error
	once.Do(func() {
		client, err = NewClient(token)
	})
	return client, err
}

// Get returns the global Discord client
func Get() *ExtendedClient {
	return client
}

// NewClient creates a new ExtendedClient
func NewClient(token string) (*ExtendedClient, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentGuildModeration |
		discordgo.IntentsMessageContent

	session.ShardCount = 1
	session.SyncEvents = false
	session.StateEnabled = true
	session.LogLevel = discordgo.LogWarning

	prefix := "!"
	ttl := 5 * time.Minute
	if cfg := config.Get(); cfg != nil {
		prefix = cfg.CommandPrefix
		ttl = cfg.DeleteEphemeralAfter
	}

	c := &ExtendedClient{
		Session:      session,
		Commands:     NewRegistry[*Command](),
		TextCommands: NewRegistry[*TextCommand](),
		Scheduler:    NewDeletionScheduler(session, ttl),
		Gateway:      NewGateway(session),
		Prefix:       prefix,
	}

	c.CommandHandler = NewCommandHandler(c)
	c.EventHandler = NewEventHandler(c)

	return c, nil
}

// Start opens the gateway connection
func (c *ExtendedClient) Start() error {
	c.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		c.mu.Lock()
		c.isReady = true
		c.mu.Unlock()

		logger.Success("Bot conectado como: "+r.User.Username, "Client")

		c.CommandHandler.RegisterCommands()
	})

	c.Session.AddHandler(c.handleInteraction)
	c.Session.AddHandler(c.handleMessage)

	c.StartTime = time.Now()

	return c.Session.Open()
}

// commandName builds the registry key of an interaction, joining subcommand
// groups and subcommands with dots
func commandName(data discordgo.ApplicationCommandInteractionData) string {
	name := data.Name
	if len(data.Options) == 0 {
		return name
	}

	opt := data.Options[0]
	switch opt.Type {
	case discordgo.ApplicationCommandOptionSubCommandGroup:
		if len(opt.Options) > 0 {
			name = data.Name + "." + opt.Name + "." + opt.Options[0].Name
		}
	case discordgo.ApplicationCommandOptionSubCommand:
		name = data.Name + "." + opt.Name
	}
	return name
}

// handleInteraction handles incoming Discord interactions
func (c *ExtendedClient) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer errors.RecoverMiddleware()()

	if i.Type != discordgo.InteractionApplicationCommand &&
		i.Type != discordgo.InteractionApplicationCommandAutocomplete {
		return
	}

	name := commandName(i.ApplicationCommandData())
	cmd, ok := c.Commands.Get(name)
	if !ok {
		if i.Type == discordgo.InteractionApplicationCommand {
			logger.Warn("Command not found: "+name, "Client")
		}
		return
	}

	ctx := &CommandContext{
		Session:     s,
		Interaction: i,
		Client:      c,
	}

	if i.Type == discordgo.InteractionApplicationCommandAutocomplete {
		if cmd.AutoComplete != nil {
			cmd.AutoComplete(ctx)
		}
		return
	}

	if cmd.RequiresDB && !database.Get().Connected() {
		_ = ctx.ReplyTransient(msgDatabaseOffline)
		return
	}

	if err := cmd.Run(ctx); err != nil {
		logger.Error("Error executing command "+name+": "+err.Error(), "Client")
	}
}

// handleMessage dispatches prefixed text commands
func (c *ExtendedClient) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	defer errors.RecoverMiddleware()()

	if m.Author == nil || m.Author.Bot || !strings.HasPrefix(m.Content, c.Prefix) {
		return
	}

	replyAuthor := ""
	if m.ReferencedMessage != nil && m.ReferencedMessage.Author != nil {
		replyAuthor = m.ReferencedMessage.Author.ID
	}

	parsed, ok := parse.Parse(c.Prefix, m.Content, replyAuthor)
	if !ok {
		return
	}

	cmd, ok := c.TextCommands.Get(parsed.Name)
	if !ok {
		return
	}

	ctx := &MessageContext{
		Session: s,
		Message: m,
		Client:  c,
		Command: parsed,
	}

	if cmd.RequiresDB && !database.Get().Connected() {
		_ = ctx.ReplyEphemeral(msgDatabaseOffline)
		return
	}

	if err := cmd.Run(ctx); err != nil {
		logger.Error("Error executing text command "+parsed.Name+": "+err.Error(), "Client")
	}
}

// Stop stops the bot and closes the session
func (c *ExtendedClient) Stop() error {
	c.mu.Lock()
	c.isReady = false
	c.mu.Unlock()

	c.Scheduler.Stop()

	if c.Session != nil {
		return c.Session.Close()
	}
	return nil
}

// IsReady returns true if the bot is ready
func (c *ExtendedClient) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isReady
}

// GuildCount returns the number of guilds the bot is in
func (c *ExtendedClient) GuildCount() int {
	if c.Session == nil || c.Session.State == nil {
		return 0
	}
	c.Session.State.RLock()
	defer c.Session.State.RUnlock()
	return len(c.Session.State.Guilds)
}
