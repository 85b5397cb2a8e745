// Package regen drives one regeneration pass over a media library.
//
// A pass resolves a selection from Criteria, hands each record to the
// derivation engine strictly in order, keeps going when a record fails and
// reports either a success line or every failure in the order it happened.
// The Regenerator wraps a pass behind a confirmation gate; a denied gate
// means no lookups, no derivations and no output.
package regen
