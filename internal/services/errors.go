package services

import "errors"

var (
	ErrCaseNotFound          = errors.New("case not found")
	ErrInvestigationNotFound = errors.New("investigation not found")
	ErrEnquiryNotFound       = errors.New("enquiry not found")

	// ErrVersionConflict means a concurrent transition won the optimistic
	// version check; the caller's read was stale.
	ErrVersionConflict = errors.New("case was modified concurrently")

	// ErrAllocationConflict is transient; creation retries allocation a
	// bounded number of times before giving up with ErrAllocationExhausted.
	ErrAllocationConflict  = errors.New("identifier allocation conflict")
	ErrAllocationExhausted = errors.New("identifier allocation exhausted after retries")

	ErrCommentRequired = errors.New("a rejection requires a non-blank comment")
	ErrNotOwner        = errors.New("case belongs to a different reporter")
	ErrInvalidStatus   = errors.New("invalid status value")
)
