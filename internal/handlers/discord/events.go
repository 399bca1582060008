package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/remindme/internal/logger"
	"github.com/KirkDiggler/remindme/internal/repositories/guild"
	"github.com/KirkDiggler/remindme/internal/snowflake"
)

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.handleReady(context.Background(), r)
}

func (b *Bot) onGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	b.handleGuildCreate(context.Background(), g)
}

func (b *Bot) onGuildDelete(_ *discordgo.Session, g *discordgo.GuildDelete) {
	b.handleGuildDelete(context.Background(), g)
}

// handleReady records unseen guilds, then purges expired reminders and arms
// the rest. Every READY retries until a reconcile has succeeded, reconnects
// after that keep the armed timers.
func (b *Bot) handleReady(ctx context.Context, r *discordgo.Ready) {
	if r.User != nil {
		b.log.Info("logged in", logger.String("user", r.User.Username), logger.String("user_id", r.User.ID))
	}

	for _, g := range r.Guilds {
		b.addGuild(ctx, g)
	}
	b.synced.Store(true)

	b.reconcile(ctx)
}

func (b *Bot) reconcile(ctx context.Context) {
	b.reconcileMu.Lock()
	defer b.reconcileMu.Unlock()

	if b.scheduler.Reconciled() {
		return
	}

	out, err := b.scheduler.Reconcile(ctx)
	if err != nil {
		// Retried by the next READY or resync
		b.log.Error("failed to reconcile reminders", logger.Error(err))
		return
	}
	b.log.Info("reconciled reminders",
		logger.Int64("purged", out.Purged),
		logger.Int("armed", out.Armed),
		logger.Int("dropped", out.Dropped))
}

func (b *Bot) handleGuildCreate(ctx context.Context, g *discordgo.GuildCreate) {
	if g.Guild == nil {
		return
	}
	b.addGuild(ctx, g.Guild)
}

// handleGuildDelete forgets a guild the bot was removed from. An unavailable
// guild is an outage, not a removal.
func (b *Bot) handleGuildDelete(ctx context.Context, g *discordgo.GuildDelete) {
	if g.Guild == nil || g.Unavailable {
		return
	}

	id := snowflake.OfGuild(g.Guild)
	if id.IsZero() {
		return
	}

	cancelled := b.scheduler.CancelGuild(id)

	out, err := b.guilds.Remove(ctx, &guild.RemoveInput{Snowflake: id})
	if err != nil {
		b.log.Error("failed to remove guild", logger.Stringer("guild_id", id), logger.Error(err))
		return
	}

	b.log.Info("left guild",
		logger.Stringer("guild_id", id),
		logger.Bool("removed", out.Removed),
		logger.Int("cancelled", cancelled))
}

func (b *Bot) addGuild(ctx context.Context, g *discordgo.Guild) {
	id := snowflake.OfGuild(g)
	if id.IsZero() {
		return
	}
	log := b.log.With(logger.Stringer("guild_id", id))

	exists, err := b.guilds.Exists(ctx, &guild.ExistsInput{Snowflake: id})
	if err != nil {
		log.Error("failed to look up guild", logger.Error(err))
		return
	}
	if exists {
		log.Debug("guild already known")
		return
	}

	if _, err := b.guilds.Add(ctx, &guild.AddInput{Snowflake: id}); err != nil {
		log.Error("failed to add guild", logger.Error(err))
		return
	}
	log.Info("added guild", logger.String("name", g.Name))
}
