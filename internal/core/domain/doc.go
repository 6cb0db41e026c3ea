// Package domain defines the core business entities for Khoj.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - OrgNode: A structured parse unit from an org-mode document
//   - Entry: A normalised, indexable unit of text
//   - ConversationLog / LogEntry: The persisted chat history read view
//   - ChatMessage: An ephemeral role-tagged unit for the model backend
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
