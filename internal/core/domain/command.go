package domain

import "fmt"

// ConversationCommand selects which retrieval context and conversation
// primer apply to a chat request.
type ConversationCommand int

const (
	// CommandDefault answers from notes when references are available,
	// falling back to general conversation otherwise.
	CommandDefault ConversationCommand = iota

	// CommandNotes answers strictly from the user's notes.
	CommandNotes

	// CommandOnline answers from online search results.
	CommandOnline

	// CommandGeneral answers from general knowledge, ignoring notes.
	CommandGeneral
)

// ParseConversationCommand maps a command string (as typed after a slash in
// chat clients) to a ConversationCommand.
func ParseConversationCommand(s string) (ConversationCommand, error) {
	switch s {
	case "", "default":
		return CommandDefault, nil
	case "notes":
		return CommandNotes, nil
	case "online":
		return CommandOnline, nil
	case "general":
		return CommandGeneral, nil
	default:
		return CommandDefault, fmt.Errorf("%w: unknown conversation command %q", ErrInvalidInput, s)
	}
}

// String returns the command keyword.
func (c ConversationCommand) String() string {
	switch c {
	case CommandNotes:
		return "notes"
	case CommandOnline:
		return "online"
	case CommandGeneral:
		return "general"
	default:
		return "default"
	}
}
