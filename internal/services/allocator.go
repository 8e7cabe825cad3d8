package services

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ohse-platform/incident-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Identifier formats: cases are YYnnn (2-digit year, 3-digit sequence
// resetting per calendar year), enquiries are a global 3-digit nnn. Both
// follow max-existing-plus-one, starting at 1.
//
// The read-max and the insert run inside one transaction with a row lock
// on the current maximum; the unique index on the identifier column plus
// a bounded retry in the caller covers the empty-scope race two
// concurrent first allocations would hit.

const seqWidth = 3

func yearPrefix(year int) string {
	return fmt.Sprintf("%02d", year%100)
}

// nextInSequence computes the successor identifier for a scope given the
// highest existing identifier (empty when none exist yet).
func nextInSequence(prefix, max string) (string, error) {
	seq := 0
	if max != "" {
		if len(max) != len(prefix)+seqWidth {
			return "", fmt.Errorf("malformed identifier %q in scope %q", max, prefix)
		}
		n, err := strconv.Atoi(max[len(prefix):])
		if err != nil {
			return "", fmt.Errorf("malformed identifier %q in scope %q", max, prefix)
		}
		seq = n
	}
	seq++
	if seq > 999 {
		return "", fmt.Errorf("sequence exhausted in scope %q", prefix)
	}
	return prefix + fmt.Sprintf("%0*d", seqWidth, seq), nil
}

// TrackingAllocator hands out case and enquiry identifiers. Methods must
// run inside the same transaction that persists the new record.
type TrackingAllocator struct{}

func NewTrackingAllocator() *TrackingAllocator {
	return &TrackingAllocator{}
}

// NextCaseNumber returns the next YYnnn tracking number for year, locking
// the current maximum row for the year's prefix.
func (a *TrackingAllocator) NextCaseNumber(tx *gorm.DB, year int) (string, error) {
	prefix := yearPrefix(year)
	var last models.Case
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("tracking_no").
		Where("tracking_no LIKE ?", prefix+"%").
		Order("tracking_no DESC").
		First(&last).Error
	max := ""
	if err == nil {
		max = last.TrackingNo
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to read max tracking number: %w", err)
	}
	return nextInSequence(prefix, max)
}

// NextEnquiryNumber returns the next global nnn enquiry identifier.
func (a *TrackingAllocator) NextEnquiryNumber(tx *gorm.DB) (string, error) {
	var last models.Enquiry
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("enquiry_id").
		Order("enquiry_id DESC").
		First(&last).Error
	max := ""
	if err == nil {
		max = last.EnquiryID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to read max enquiry id: %w", err)
	}
	return nextInSequence("", max)
}
