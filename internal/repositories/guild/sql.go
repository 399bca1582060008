package guild

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/KirkDiggler/remindme/internal/models"
	"github.com/KirkDiggler/remindme/internal/snowflake"
)

const selectGuilds = `SELECT id, snowflake, reminders_count, joined_at FROM guilds`

// Config holds configuration for the SQL guild repository
type Config struct {
	DB       *sqlx.DB
	Location *time.Location
}

type sqlRepository struct {
	db  *sqlx.DB
	loc *time.Location
}

type guildRow struct {
	ID             int64        `db:"id"`
	Snowflake      snowflake.ID `db:"snowflake"`
	RemindersCount int64        `db:"reminders_count"`
	JoinedAt       int64        `db:"joined_at"`
}

// NewSQL creates a new SQL-backed guild repository
func NewSQL(cfg *Config) (*sqlRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.DB == nil {
		return nil, errors.New("db cannot be nil")
	}

	if err := cfg.DB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	return &sqlRepository{
		db:  cfg.DB,
		loc: loc,
	}, nil
}

// Add inserts the guild unless it already exists and returns the stored row
func (r *sqlRepository) Add(ctx context.Context, input *AddInput) (*models.Guild, error) {
	if input == nil || input.Snowflake.IsZero() {
		return nil, errors.New("input and snowflake cannot be empty")
	}

	_, err := r.db.ExecContext(ctx,
		r.db.Rebind(`INSERT INTO guilds (snowflake) VALUES (?) ON CONFLICT (snowflake) DO NOTHING`),
		input.Snowflake)
	if err != nil {
		return nil, fmt.Errorf("failed to add guild: %w", err)
	}

	g, err := r.Get(ctx, &GetInput{Snowflake: input.Snowflake})
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("guild %s vanished after insert", input.Snowflake)
	}

	return g, nil
}

// Remove deletes the guild row; its reminders go with it
func (r *sqlRepository) Remove(ctx context.Context, input *RemoveInput) (*RemoveOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM guilds WHERE snowflake = ?`), input.Snowflake)
	if err != nil {
		return nil, fmt.Errorf("failed to remove guild: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to remove guild: %w", err)
	}

	return &RemoveOutput{Removed: n > 0}, nil
}

func (r *sqlRepository) Exists(ctx context.Context, input *ExistsInput) (bool, error) {
	if input == nil {
		return false, errors.New("input cannot be nil")
	}

	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM guilds WHERE snowflake = ?`), input.Snowflake)
	if err != nil {
		return false, fmt.Errorf("failed to check guild: %w", err)
	}

	return n > 0, nil
}

func (r *sqlRepository) Get(ctx context.Context, input *GetInput) (*models.Guild, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	var row guildRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(selectGuilds+` WHERE snowflake = ?`), input.Snowflake)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild: %w", err)
	}

	return r.toModel(&row), nil
}

func (r *sqlRepository) List(ctx context.Context) (*ListOutput, error) {
	var rows []guildRow
	if err := r.db.SelectContext(ctx, &rows, selectGuilds+` ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}

	guilds := make([]*models.Guild, 0, len(rows))
	for i := range rows {
		guilds = append(guilds, r.toModel(&rows[i]))
	}

	return &ListOutput{Guilds: guilds}, nil
}

func (r *sqlRepository) toModel(row *guildRow) *models.Guild {
	return &models.Guild{
		ID:             row.ID,
		Snowflake:      row.Snowflake,
		RemindersCount: row.RemindersCount,
		JoinedAt:       time.Unix(row.JoinedAt, 0).In(r.loc),
	}
}
