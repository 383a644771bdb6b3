// Package events provides types and interfaces for an event-driven architecture.
//
// The mastery ledger is the only writer of truth; everything downstream of
// it (gamification, future analytics consumers) reacts to ledger events
// instead of being called directly. Services emit events without knowing
// which handlers will process them, which keeps the ledger write path free
// of circular dependencies on its consumers.
//
// The primary components are:
// - LedgerEvent: An envelope carrying a typed, JSON-serialized payload
// - InteractionRecordedPayload: Emitted after every committed ledger append
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
