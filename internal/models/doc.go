// Package models defines the core domain models for splitledger.
//
// # Participants
//
// Anyone who can appear in a bill split is a Participant. Registered
// participants are Users: long-lived identities with a login, shared across
// groups. Guests are scoped to a single group and have no login. Identity
// equality is always by ID.
//
// # Bills and splits
//
// A Bill is paid by one registered participant and divided into Splits. Each
// Split stores a snapshot of the participant's display name and registration
// flag taken when the bill was created. The snapshot is never refreshed from
// the live participant record, so renaming a user does not rewrite history.
//
// # Money
//
// All amounts are github.com/shopspring/decimal values. Balances are derived
// from bills on every read and are never stored.
//
// # Design Principles
//
//  1. Relationships are ID strings, not pointers.
//  2. Timestamps are Unix seconds.
//  3. Denormalized fields (split names, settlement group names) are deliberate.
package models
