// Package alert holds the live notification and input prompt collections.
//
// Entries are identified by generated ids. Removal goes through the owning
// collection (Dismiss, Confirm, Respond); entries hold no reference back to
// it. Every mutation bumps the collection's version so derived views can
// detect changes without diffing.
//
// Neither collection is safe for concurrent use. Callers serialize access
// through the owning ClientData.
package alert
