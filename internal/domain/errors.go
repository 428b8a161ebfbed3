package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrStructural means a required anchor or data blob is absent from a document.
	ErrStructural       = errors.New("required document structure not found")
	ErrUnknownPortal    = errors.New("unknown portal")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrMissingRequired  = errors.New("offer is missing a required field")
	ErrDuplicateOffer   = errors.New("offer already stored for campaign")
	ErrProviderNotFound = errors.New("unknown document provider")
)

// Structural wraps ErrStructural with the name of the missing anchor.
func Structural(anchor string) error {
	return fmt.Errorf("%w: %s", ErrStructural, anchor)
}
