// ============================================================================
// Eventphase Domain Types
// ============================================================================
//
// Package: pkg/events
// Purpose: Public domain model for the phased event-processing state machine
//
// Design Principles:
//   1. Closed enumerations as typed constants (priority, phase tag, results)
//   2. Immutable-after-build handler entries
//   3. No third-party serialization or enum library: the pack shows none,
//      and these are small closed sets better expressed as plain Go consts
//
// Core Types:
//   - Event: identity, immutable data view, mutable completion flags
//   - HandlerEntry: immutable registration record consumed by the core
//   - HandlerBuilder: one-shot builder producing a HandlerEntry
//   - Context: the capability interface handlers see (implemented by
//     internal/eventctx, defined here to avoid an import cycle)
//
// ============================================================================

// Package events defines the domain model shared by every core package:
// events, handler entries, phases, priorities, and result enums.
package events
