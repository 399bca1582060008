package reminder

// ReminderError is returned for programming and wiring mistakes
type ReminderError string

func (e ReminderError) Error() string {
	return string(e)
}

const (
	ErrNilConfig       ReminderError = "config cannot be nil"
	ErrNilRepository   ReminderError = "reminder repository cannot be nil"
	ErrNilScheduler    ReminderError = "scheduler cannot be nil"
	ErrNilInteractions ReminderError = "interaction repository cannot be nil"
	ErrNilParser       ReminderError = "time parser cannot be nil"
	ErrNilClock        ReminderError = "clock cannot be nil"
	ErrNilInput        ReminderError = "input cannot be nil"
)

// ValidationError is a user mistake; its text is shown back to the user
type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingDate      ValidationError = "You must specify a date"
	ErrInPast           ValidationError = "You can't set a reminder in the past"
	ErrTooFar           ValidationError = "You can't set a reminder more than 5 years in the future"
	ErrContentTooLong   ValidationError = "Content must be less than 1000 characters"
	ErrContentEmpty     ValidationError = "Content must be more than 0 characters"
	ErrNotTextChannel   ValidationError = "You can only set reminders in text channels"
	ErrReminderNotFound ValidationError = "Reminder not found"
	ErrInvalidCode      ValidationError = "Reminder code must be a number"
)

// PermissionError denies an action to the requesting member
type PermissionError string

func (e PermissionError) Error() string {
	return string(e)
}

const (
	ErrNotOwner         PermissionError = "You can't delete other people's reminders"
	ErrNotAdministrator PermissionError = "You don't have permissions to use this command"
)
