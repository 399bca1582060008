package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/remindme/internal/config"
	"github.com/KirkDiggler/remindme/internal/logger"
	"github.com/KirkDiggler/remindme/internal/repositories/guild"
	"github.com/KirkDiggler/remindme/internal/repositories/pagination"
	"github.com/KirkDiggler/remindme/internal/services/reminder"
	"github.com/KirkDiggler/remindme/internal/services/scheduler"
)

// Bot represents the Discord bot instance
type Bot struct {
	session    *discordgo.Session
	commands   map[string]CommandHandler
	components map[string]ComponentHandler
	commandIDs map[string]string // Maps command name to command ID
	guilds     guild.Repository
	scheduler  scheduler.Service
	log        logger.Logger
	config     *Config

	reconcileMu sync.Mutex
	synced      atomic.Bool
	removers    []func()
}

// Config holds the configuration for the bot
type Config struct {
	// Session is the Discord session, shared with delivery
	Session *discordgo.Session

	// Application ID for the bot
	ApplicationID string

	// Optional guild ID for development (server-specific commands)
	GuildID string

	Reminders reminder.Service
	Pages     pagination.Repository
	Guilds    guild.Repository
	Scheduler scheduler.Service
	Colors    config.Colors
	Logger    logger.Logger
}

// New creates a new Discord bot
func New(cfg *Config) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Session == nil {
		return nil, errors.New("session cannot be nil")
	}

	if cfg.Guilds == nil {
		return nil, errors.New("guild repository cannot be nil")
	}

	if cfg.Scheduler == nil {
		return nil, errors.New("scheduler cannot be nil")
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	reminderCmd, err := NewReminderCommand(&ReminderCommandConfig{
		Reminders: cfg.Reminders,
		Pages:     cfg.Pages,
		Colors:    cfg.Colors,
		Logger:    log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create reminder command: %w", err)
	}

	bot := &Bot{
		session:    cfg.Session,
		commands:   map[string]CommandHandler{reminderCmd.GetName(): reminderCmd},
		components: map[string]ComponentHandler{reminderCmd.Prefix(): reminderCmd},
		commandIDs: make(map[string]string),
		guilds:     cfg.Guilds,
		scheduler:  cfg.Scheduler,
		log:        log.With(logger.String("component", "bot")),
		config:     cfg,
	}

	// Guild events are the only gateway traffic needed; interactions always arrive
	cfg.Session.Identify.Intents = discordgo.IntentsGuilds

	bot.removers = append(bot.removers,
		cfg.Session.AddHandler(bot.handleInteraction),
		cfg.Session.AddHandler(bot.onReady),
		cfg.Session.AddHandler(bot.onGuildCreate),
		cfg.Session.AddHandler(bot.onGuildDelete),
	)

	return bot, nil
}

// Ready reports whether guilds are synced and expired reminders purged with
// the rest armed
func (b *Bot) Ready() bool {
	return b.synced.Load() && b.scheduler.Reconciled()
}

// Start opens the Discord connection and registers commands
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	for _, cmd := range b.commands {
		if err := b.RegisterCommand(cmd); err != nil {
			return err
		}
	}

	b.log.Info("bot is now running")
	return nil
}

// Stop closes the Discord connection. Commands registered on a development
// guild are removed first; global ones stay since they take long to propagate.
func (b *Bot) Stop() error {
	for _, remove := range b.removers {
		remove()
	}

	if b.config.GuildID != "" {
		appID := b.appID()
		for cmdName, cmdID := range b.commandIDs {
			if err := b.session.ApplicationCommandDelete(appID, b.config.GuildID, cmdID); err != nil {
				b.log.Warn("failed to delete command",
					logger.String("command", cmdName), logger.String("command_id", cmdID), logger.Error(err))
			}
		}
	}

	return b.session.Close()
}

// RegisterCommand registers a command with Discord
func (b *Bot) RegisterCommand(cmd CommandHandler) error {
	// If guild ID is provided, register command for that specific guild
	// Otherwise, register it globally
	createdCmd, err := b.session.ApplicationCommandCreate(b.appID(), b.config.GuildID, cmd.GetCommand())
	if err != nil {
		return fmt.Errorf("failed to create command %s: %w", cmd.GetName(), err)
	}

	b.commands[cmd.GetName()] = cmd
	b.commandIDs[cmd.GetName()] = createdCmd.ID
	b.log.Info("registered command",
		logger.String("command", cmd.GetName()),
		logger.String("command_id", createdCmd.ID),
		logger.String("guild_id", b.config.GuildID))

	return nil
}

func (b *Bot) appID() string {
	if b.config.ApplicationID != "" {
		return b.config.ApplicationID
	}
	// Fall back to session user ID if application ID is not provided
	if b.session.State != nil && b.session.State.User != nil {
		return b.session.State.User.ID
	}
	return ""
}

// handleInteraction handles Discord interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := b.dispatch(context.Background(), stateSession{s}, i); err != nil {
		b.log.Error("failed to handle interaction",
			logger.String("interaction_id", i.ID),
			logger.Stringer("type", i.Type),
			logger.Error(err))
	}
}

func (b *Bot) dispatch(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if h, ok := b.commands[i.ApplicationCommandData().Name]; ok {
			return h.Handle(ctx, s, i)
		}
	case discordgo.InteractionApplicationCommandAutocomplete:
		if h, ok := b.commands[i.ApplicationCommandData().Name]; ok {
			return h.Autocomplete(ctx, s, i)
		}
	case discordgo.InteractionMessageComponent:
		prefix, _, _ := strings.Cut(i.MessageComponentData().CustomID, ":")
		if h, ok := b.components[prefix]; ok {
			return h.HandleComponent(ctx, s, i)
		}
		return fmt.Errorf("unknown component %q", i.MessageComponentData().CustomID)
	}
	return nil
}
