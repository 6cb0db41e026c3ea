// Package services contains the core business logic.
//
// # Architectural Position
//
// Services sit at the centre of the hexagon. They depend only on the
// domain package and on port interfaces; all infrastructure (model
// backends, prompt files, configuration) reaches them through ports.
//
// The services are:
//   - Ingestor: extract → normalise → post-process pipeline turning raw
//     documents into index-ready entries.
//   - Planner: converts a user query plus chat history into search
//     queries via the model backend, with a deterministic fallback.
//   - Composer: selects a conversation primer by command mode, assembles
//     the bounded message context and streams the model's answer.
//
// BuildContext is the shared context-assembly function used by the
// Composer: system message first, as many recent history pairs as the
// token budget allows, new primer last.
package services
