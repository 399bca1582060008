package discord

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/remindme/internal/config"
	"github.com/KirkDiggler/remindme/internal/models"
)

const (
	// PageSize is the number of reminders per listing page
	PageSize = 10

	// PageButtonPrefix starts the custom ID of every pagination button:
	// reminder_page:<session>:<target page>
	PageButtonPrefix = "reminder_page"
)

// CreateFieldFromReminder renders a reminder as an embed field
func CreateFieldFromReminder(r *models.Reminder) (string, string) {
	name := fmt.Sprintf("#%d. <t:%d:f> | %s", r.ReminderNumber, r.ExpiresAt.Unix(), r.AuthorID.Mention())
	return name, r.Content
}

// BuildPages splits reminders into pages of PageSize fields. No reminders
// means no pages.
func BuildPages(title, description string, reminders []*models.Reminder) []models.Page {
	var pages []models.Page
	for start := 0; start < len(reminders); start += PageSize {
		end := min(start+PageSize, len(reminders))

		fields := make([]models.PageField, 0, end-start)
		for _, r := range reminders[start:end] {
			name, value := CreateFieldFromReminder(r)
			fields = append(fields, models.PageField{Name: name, Value: value})
		}

		pages = append(pages, models.Page{
			Title:       title,
			Description: description,
			Fields:      fields,
		})
	}
	return pages
}

func renderPage(page models.Page, index, total int, colors config.Colors) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(page.Fields))
	for _, f := range page.Fields {
		fields = append(fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value})
	}

	embed := &discordgo.MessageEmbed{
		Title:       page.Title,
		Description: page.Description,
		Color:       colors.Default,
		Fields:      fields,
	}
	if total > 1 {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Page %d/%d", index+1, total)}
	}
	return embed
}

// pageButtons returns the Prev/Next row for page index, nothing for a
// single page
func pageButtons(sessionID string, index, total int) []discordgo.MessageComponent {
	if total <= 1 {
		return nil
	}

	prev := discordgo.Button{
		Label:    "Prev",
		Style:    discordgo.SecondaryButton,
		CustomID: pageCustomID(sessionID, max(index-1, 0)),
		Disabled: index == 0,
		Emoji:    &discordgo.ComponentEmoji{Name: "⬅️"},
	}
	next := discordgo.Button{
		Label:    "Next",
		Style:    discordgo.SecondaryButton,
		CustomID: pageCustomID(sessionID, min(index+1, total-1)),
		Disabled: index == total-1,
		Emoji:    &discordgo.ComponentEmoji{Name: "➡️"},
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{prev, next}},
	}
}

func pageCustomID(sessionID string, index int) string {
	return fmt.Sprintf("%s:%s:%d", PageButtonPrefix, sessionID, index)
}

func parsePageCustomID(customID string) (string, int, error) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 || parts[0] != PageButtonPrefix || parts[1] == "" {
		return "", 0, errors.New("malformed page button id")
	}

	index, err := strconv.Atoi(parts[2])
	if err != nil || index < 0 {
		return "", 0, fmt.Errorf("malformed page index %q", parts[2])
	}

	return parts[1], index, nil
}

func createdEmbed(r *models.Reminder, colors config.Colors) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: fmt.Sprintf(":alarm_clock: Reminder `#%d` created successfully and will be sent to this channel at <t:%d:F>",
			r.ReminderNumber, r.ExpiresAt.Unix()),
		Color: colors.Success,
	}
}

func deletedEmbed(r *models.Reminder, colors config.Colors) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: fmt.Sprintf(":alarm_clock: Reminder `#%d` deleted successfully", r.ReminderNumber),
		Color:       colors.Success,
	}
}

func errorEmbed(title, message string, colors config.Colors) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: message,
		Color:       colors.Error,
	}
}

// withAuthor signs an embed with the invoking user
func withAuthor(embed *discordgo.MessageEmbed, i *discordgo.InteractionCreate) *discordgo.MessageEmbed {
	var u *discordgo.User
	switch {
	case i.Member != nil && i.Member.User != nil:
		u = i.Member.User
	case i.User != nil:
		u = i.User
	default:
		return embed
	}

	embed.Author = &discordgo.MessageEmbedAuthor{Name: u.Username, IconURL: u.AvatarURL("")}
	return embed
}
