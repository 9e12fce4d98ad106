package models

import "errors"

var (
	// ErrInvalidTerms marks proposal term validation failures. These are
	// detected locally, before any store call is made.
	ErrInvalidTerms = errors.New("invalid proposal terms")

	// ErrProposalNotFound is returned when no proposal row exists for an id.
	ErrProposalNotFound = errors.New("proposal not found")

	// ErrAlreadyResolved is returned when a decision is applied to a proposal
	// that is no longer pendiente. Re-sending a decision must not overwrite
	// the recorded outcome.
	ErrAlreadyResolved = errors.New("proposal already resolved")

	// ErrMissingLocation aborts event materialization; a booking is never
	// created with an invented location.
	ErrMissingLocation = errors.New("proposal has no event location")

	// ErrEventExists wraps the store's unique-key violation on
	// events.proposal_id, the backstop for racing acceptances.
	ErrEventExists = errors.New("event already exists for proposal")

	ErrEventNotFound   = errors.New("event not found")
	ErrMessageNotFound = errors.New("message not found")
)
