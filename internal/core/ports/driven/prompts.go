package driven

// PromptStore provides access to conversation prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
//
// Templates use named substitution slots written as {slot_name}; rendering
// is the consumer's concern.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptPersonality is the system message establishing the assistant's
	// persona. Slots: {current_date}.
	PromptPersonality = "personality"

	// PromptExtractQuestions converts a user message plus chat history into
	// a list of search queries. Slots: {current_date}, {last_new_year},
	// {last_new_year_date}, {current_new_year_date}, {yesterday_date},
	// {chat_history}, {text}.
	PromptExtractQuestions = "extract_questions"

	// PromptNotesConversation answers a query from retrieved notes.
	// Slots: {query}, {references}.
	PromptNotesConversation = "notes_conversation"

	// PromptGeneralConversation answers a query from general knowledge.
	// Slots: {query}.
	PromptGeneralConversation = "general_conversation"

	// PromptOnlineSearchConversation answers a query from online search
	// results. Slots: {query}, {online_results}.
	PromptOnlineSearchConversation = "online_search_conversation"

	// PromptNoNotesFound is the fixed reply when notes mode has no
	// references. No slots.
	PromptNoNotesFound = "no_notes_found"

	// PromptNoOnlineResultsFound is the fixed reply when online mode has no
	// results. No slots.
	PromptNoOnlineResultsFound = "no_online_results_found"
)
