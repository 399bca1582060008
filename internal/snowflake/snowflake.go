// Package snowflake carries Discord identifiers as unsigned 64-bit integers
// and derives them from discordgo entities.
package snowflake

import (
	"database/sql/driver"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// ID is a Discord snowflake. It is persisted as a signed 64-bit integer so it
// fits BIGINT columns on every supported database.
type ID uint64

// Parse reads a decimal snowflake as sent by Discord
func Parse(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid snowflake %q: %w", s, err)
	}
	return ID(v), nil
}

// MustParse is Parse for identifiers already validated by Discord
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

func (id ID) IsZero() bool {
	return id == 0
}

// Mention renders the user mention markup for id
func (id ID) Mention() string {
	return "<@" + id.String() + ">"
}

// Value implements driver.Valuer
func (id ID) Value() (driver.Value, error) {
	return int64(id), nil
}

// Scan implements sql.Scanner
func (id *ID) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*id = ID(uint64(v))
	case []byte:
		return id.parseSigned(string(v))
	case string:
		return id.parseSigned(v)
	case nil:
		*id = 0
	default:
		return fmt.Errorf("cannot scan %T into snowflake", src)
	}
	return nil
}

func (id *ID) parseSigned(s string) error {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid stored snowflake %q: %w", s, err)
	}
	*id = ID(uint64(v))
	return nil
}

// MarshalJSON encodes the id as a string, like the Discord API does
func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.String() + `"`), nil
}

// UnmarshalJSON accepts both quoted and bare numbers
func (id *ID) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// OfGuild returns the guild's snowflake, zero when g is nil or malformed
func OfGuild(g *discordgo.Guild) ID {
	if g == nil {
		return 0
	}
	return parseOrZero(g.ID)
}

func OfChannel(c *discordgo.Channel) ID {
	if c == nil {
		return 0
	}
	return parseOrZero(c.ID)
}

func OfUser(u *discordgo.User) ID {
	if u == nil {
		return 0
	}
	return parseOrZero(u.ID)
}

func OfMember(m *discordgo.Member) ID {
	if m == nil {
		return 0
	}
	return OfUser(m.User)
}

// OfInteractionUser resolves the invoking user of an interaction. Guild
// interactions carry the user inside Member, DMs carry it in User.
func OfInteractionUser(i *discordgo.Interaction) ID {
	if i == nil {
		return 0
	}
	if i.Member != nil && i.Member.User != nil {
		return OfMember(i.Member)
	}
	return OfUser(i.User)
}

func parseOrZero(s string) ID {
	id, err := Parse(s)
	if err != nil {
		return 0
	}
	return id
}
