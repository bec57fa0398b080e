package ticketcode

import (
	"fmt"
	"strings"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

// Validate reports whether a decoded ticket carries everything needed to
// pre-fill a record: track, race number, a supported buy method whose
// selection decoded to something non-empty, and a total stake.
// The returned error wraps ErrUnsupportedBuyMethod or ErrIncomplete.
func Validate(t *models.DecodedTicket) error {
	if t == nil {
		return ErrIncomplete
	}
	method := t.Header.BuyMethod
	if method == nil || !method.Supported() {
		if method == nil {
			return fmt.Errorf("%w: missing", ErrUnsupportedBuyMethod)
		}
		return fmt.Errorf("%w: %s", ErrUnsupportedBuyMethod, *method)
	}

	var missing []string
	if t.Header.Track == nil {
		missing = append(missing, "track")
	}
	if t.Header.RaceNumber == nil {
		missing = append(missing, "race_number")
	}
	if t.Selection == nil || t.Selection.Empty() || t.Selection.Method() != *method {
		missing = append(missing, "selection")
	}
	if t.TotalStake() == nil {
		missing = append(missing, "total_stake")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

// IsValid is Validate as a predicate
func IsValid(t *models.DecodedTicket) bool {
	return Validate(t) == nil
}
