package reminder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/KirkDiggler/remindme/internal/models"
	"github.com/KirkDiggler/remindme/internal/snowflake"
)

const selectReminders = `
SELECT r.id, g.snowflake AS guild_snowflake, r.channel_id, r.author_id,
       r.content, r.expires_at, r.reminder_number
FROM reminders r
JOIN guilds g ON g.id = r.guild_id`

// Config holds configuration for the SQL reminder repository
type Config struct {
	DB *sqlx.DB

	// Location expiry times are reported in
	Location *time.Location
}

type sqlRepository struct {
	db  *sqlx.DB
	loc *time.Location
}

// reminderRow mirrors selectReminders. Expiry is stored as unix seconds.
type reminderRow struct {
	ID             int64        `db:"id"`
	GuildSnowflake snowflake.ID `db:"guild_snowflake"`
	ChannelID      snowflake.ID `db:"channel_id"`
	AuthorID       snowflake.ID `db:"author_id"`
	Content        string       `db:"content"`
	ExpiresAt      int64        `db:"expires_at"`
	ReminderNumber int64        `db:"reminder_number"`
}

// NewSQL creates a new SQL-backed reminder repository
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

// Add stores a reminder numbered reminders_count + 1 for its guild. The
// counter is bumped with a single UPDATE ... RETURNING inside the same
// transaction as the insert, so concurrent adds never share a number.
func (r *sqlRepository) Add(ctx context.Context, input *AddInput) (*models.Reminder, error) {
	if input == nil || input.GuildID.IsZero() {
		return nil, errors.New("input and guild ID cannot be empty")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storeError("add", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		tx.Rebind(`INSERT INTO guilds (snowflake) VALUES (?) ON CONFLICT (snowflake) DO NOTHING`),
		input.GuildID)
	if err != nil {
		return nil, storeError("add", fmt.Errorf("failed to ensure guild: %w", err))
	}

	var guild struct {
		ID    int64 `db:"id"`
		Count int64 `db:"reminders_count"`
	}
	err = tx.GetContext(ctx, &guild,
		tx.Rebind(`UPDATE guilds SET reminders_count = reminders_count + 1 WHERE snowflake = ? RETURNING id, reminders_count`),
		input.GuildID)
	if err != nil {
		return nil, storeError("add", fmt.Errorf("failed to bump reminder counter: %w", err))
	}

	expiresAt := input.ExpiresAt.Unix()

	var id int64
	err = tx.GetContext(ctx, &id,
		tx.Rebind(`INSERT INTO reminders (guild_id, channel_id, author_id, content, expires_at, reminder_number)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		guild.ID, input.ChannelID, input.AuthorID, input.Content, expiresAt, guild.Count)
	if err != nil {
		return nil, storeError("add", fmt.Errorf("failed to insert reminder: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, storeError("add", err)
	}

	return &models.Reminder{
		ID:             id,
		GuildID:        input.GuildID,
		ChannelID:      input.ChannelID,
		AuthorID:       input.AuthorID,
		Content:        input.Content,
		ExpiresAt:      time.Unix(expiresAt, 0).In(r.loc),
		ReminderNumber: guild.Count,
	}, nil
}

// Get retrieves a reminder by ID
func (r *sqlRepository) Get(ctx context.Context, input *GetInput) (*models.Reminder, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	return r.getOne(ctx, r.db, "get", selectReminders+` WHERE r.id = ?`, input.ID)
}

// GetByCode retrieves a reminder by guild and reminder number
func (r *sqlRepository) GetByCode(ctx context.Context, input *GetByCodeInput) (*models.Reminder, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	return r.getOne(ctx, r.db, "get by code",
		selectReminders+` WHERE g.snowflake = ? AND r.reminder_number = ?`,
		input.GuildID, input.Code)
}

// Remove deletes a reminder. Removing an absent reminder returns nil, nil.
func (r *sqlRepository) Remove(ctx context.Context, input *RemoveInput) (*models.Reminder, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storeError("remove", err)
	}
	defer tx.Rollback()

	reminder, err := r.getOne(ctx, tx, "remove", selectReminders+` WHERE r.id = ?`, input.ID)
	if err != nil || reminder == nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM reminders WHERE id = ?`), input.ID); err != nil {
		return nil, storeError("remove", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeError("remove", err)
	}

	return reminder, nil
}

// RemoveExpired deletes every reminder with expires_at <= input.Now
func (r *sqlRepository) RemoveExpired(ctx context.Context, input *RemoveExpiredInput) (*RemoveExpiredOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM reminders WHERE expires_at <= ?`), input.Now.Unix())
	if err != nil {
		return nil, storeError("remove expired", err)
	}

	count, err := res.RowsAffected()
	if err != nil {
		return nil, storeError("remove expired", err)
	}

	return &RemoveExpiredOutput{Count: count}, nil
}

// List retrieves reminders matching input's filters
func (r *sqlRepository) List(ctx context.Context, input *ListInput) (*ListOutput, error) {
	if input == nil {
		input = &ListInput{}
	}

	var (
		where []string
		args  []any
	)
	if !input.GuildID.IsZero() {
		where = append(where, "g.snowflake = ?")
		args = append(args, input.GuildID)
	}
	if !input.AuthorID.IsZero() {
		where = append(where, "r.author_id = ?")
		args = append(args, input.AuthorID)
	}

	query := selectReminders
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY g.snowflake, r.reminder_number"
	if input.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, input.Limit)
	}

	var rows []reminderRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, storeError("list", err)
	}

	reminders := make([]*models.Reminder, 0, len(rows))
	for i := range rows {
		reminders = append(reminders, r.toModel(&rows[i]))
	}

	return &ListOutput{Reminders: reminders}, nil
}

func (r *sqlRepository) getOne(ctx context.Context, q sqlx.QueryerContext, op, query string, args ...any) (*models.Reminder, error) {
	var row reminderRow
	err := sqlx.GetContext(ctx, q, &row, r.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError(op, err)
	}

	return r.toModel(&row), nil
}

func (r *sqlRepository) toModel(row *reminderRow) *models.Reminder {
	return &models.Reminder{
		ID:             row.ID,
		GuildID:        row.GuildSnowflake,
		ChannelID:      row.ChannelID,
		AuthorID:       row.AuthorID,
		Content:        row.Content,
		ExpiresAt:      time.Unix(row.ExpiresAt, 0).In(r.loc),
		ReminderNumber: row.ReminderNumber,
	}
}
