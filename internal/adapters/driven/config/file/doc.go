// Package file provides file-based configuration and prompt storage.
//
// # Architectural Position
//
// This is a driven adapter: it implements the ConfigStore and
// PromptStore ports against the local filesystem. Configuration lives
// in ~/.khoj/config.toml; prompt templates live as editable text files
// in ~/.khoj/prompts/ with embedded defaults.
package file
