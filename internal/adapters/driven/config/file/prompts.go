package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jaytoday/khoj/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads conversation prompts from user-editable files on
// disk, with embedded defaults as fallback and as the initial content
// for new files.
//
// The store uses lazy initialisation - files are only created when first
// accessed, not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains the embedded default prompt templates.
// Substitution slots use {name} notation and are filled by the services
// that consume each prompt.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptPersonality: `You are Khoj, a smart, inquisitive and helpful personal assistant.
Use your general knowledge and past conversation with the user as context to inform your responses.
You were created by Khoj Inc. with the following capabilities:
- You *CAN REMEMBER ALL NOTES and PERSONAL INFORMATION FOREVER* that the user ever shares with you.
- Users can share files and other information with you using the Khoj Desktop, Obsidian or Emacs app.
- You cannot set reminders or take actions in the real world.
Today is {current_date} in UTC.`,

	driven.PromptExtractQuestions: `You are Khoj, an extremely smart and helpful search assistant with the ability to retrieve information from the user's notes.
- The user will provide their questions and answers to you for context.
- Add as much context from the previous questions and answers as required into your search queries.
- Break messages into multiple search queries when required to retrieve the relevant information.
- Add date filters to your search queries from questions and answers when required to retrieve the relevant information.

What searches, if any, will you need to perform to answer the users question?
Provide search queries as a JSON list of strings
Current Date: {current_date}

Q: How was my trip to Cambodia?

["How was my trip to Cambodia?"]

A: The trip was amazing. I went to the Angkor Wat temple and it was beautiful.

Q: Who did i visit that temple with?

["Who did I visit the Angkor Wat Temple in Cambodia with?"]

A: You visited the Angkor Wat Temple in Cambodia with Pablo, Namita and Xi.

Q: What national parks did I go to last year?

["National park I visited in {last_new_year} dt>='{last_new_year_date}' dt<'{current_new_year_date}'"]

A: You visited the Grand Canyon and Yellowstone National Park in {last_new_year}.

Q: What did I do for Christmas last year?

["What did I do for Christmas {last_new_year} dt>='{last_new_year}-12-25' dt<'{last_new_year}-12-26'"]

A: You went to your grandparents and exchanged gifts with your family.

Q: How did I feel yesterday?

["Diary entry for dt>='{yesterday_date}' dt<'{current_date}'"]

A: You felt tired yesterday after the long hike.

{chat_history}
Q: {text}

`,

	driven.PromptNotesConversation: `Using my personal notes and our past conversations as context, answer the following question.
These questions should be answered using the notes provided below.

Notes:
{references}

Question: {query}`,

	driven.PromptGeneralConversation: `Using your general knowledge and our past conversations as context, answer the following question.

Question: {query}`,

	driven.PromptOnlineSearchConversation: `Use this up-to-date information from the internet to inform your response.
Ask crisp follow-up questions to get additional context, when a helpful response cannot be provided from the online data or past conversations.

Information from the internet:
{online_results}

Question: {query}`,

	driven.PromptNoNotesFound: `I'm sorry, I couldn't find any relevant notes to respond to your message.`,

	driven.PromptNoOnlineResultsFound: `I'm sorry, I couldn't find any relevant information from the internet to respond to your message.`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.khoj/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".khoj", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default
// files. Returns cached value if available, otherwise loads from file.
// Falls back to the embedded default if the file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock). Double-check to avoid overwriting
	// concurrent loads.
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Khoj Prompts

This directory contains customisable prompts used by Khoj's chat features.

## Files

- ` + "`personality.txt`" + ` - System message establishing the assistant persona
- ` + "`extract_questions.txt`" + ` - Converts a chat message into note search queries
- ` + "`notes_conversation.txt`" + ` - Answers from retrieved notes
- ` + "`general_conversation.txt`" + ` - Answers from general knowledge
- ` + "`online_search_conversation.txt`" + ` - Answers from online search results
- ` + "`no_notes_found.txt`" + ` - Reply when no relevant notes exist
- ` + "`no_online_results_found.txt`" + ` - Reply when no online results exist

## Customisation

Edit any file to customise chat behaviour. Changes take effect after
restarting khoj or on the next command.

## Substitution Slots

Prompts use named slots in braces, e.g. ` + "`{query}`" + `, ` + "`{references}`" + `,
` + "`{current_date}`" + `. Keep the slots your prompt needs; unknown slots are
left untouched.
`
	return os.WriteFile(path, []byte(content), 0600)
}
