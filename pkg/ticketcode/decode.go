// Package ticketcode decodes the numeric code printed as a QR symbol on JRA
// betting tickets.
//
// Decoding is pure: the same code always yields an equal ticket and no call
// shares state with another, so it is safe from any number of goroutines.
package ticketcode

import (
	"fmt"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

// Decode turns a raw scanned string into a ticket. Only non-digit input and
// codes shorter than the header fail outright; every other problem is
// recorded on the ticket's issues and left to Validate.
func Decode(raw string) (*models.DecodedTicket, error) {
	if !AllDigits(raw) {
		return nil, ErrNonNumericInput
	}
	if len(raw) < HeaderLength {
		return nil, fmt.Errorf("%w: %d digits", ErrTooShort, len(raw))
	}

	header, issues := ExtractHeader(raw)
	ticket := &models.DecodedTicket{Raw: raw, Header: header, Issues: issues}
	if len(raw) < VariantMinLength {
		ticket.Issues = append(ticket.Issues, toIssue(fieldErr("selection", ErrStructuralTruncation,
			"need %d digits, have %d", VariantMinLength, len(raw))))
		return ticket, nil
	}
	if header.BuyMethod == nil {
		return ticket, nil
	}

	sel, err := decodeSelection(raw, *header.BuyMethod)
	if err != nil {
		ticket.Issues = append(ticket.Issues, toIssue(err))
	}
	ticket.Selection = sel
	return ticket, nil
}

// decodeSelection routes to exactly one variant decoder. A nil Selection is
// returned (never a typed nil) when the variant could not be decoded.
func decodeSelection(code string, method models.BuyMethod) (models.Selection, error) {
	switch method {
	case models.BuyMethodNormal, models.BuyMethodCheer:
		return DecodeNormal(code, method)
	case models.BuyMethodBox:
		sel, err := DecodeBox(code)
		if err != nil {
			return nil, err
		}
		return sel, nil
	case models.BuyMethodNagashi:
		sel, err := DecodeNagashi(code)
		if err != nil {
			return nil, err
		}
		return sel, nil
	case models.BuyMethodFormation:
		sel, err := DecodeFormation(code)
		if err != nil {
			return nil, err
		}
		return sel, nil
	default:
		return nil, fieldErr("buy_method", ErrUnsupportedBuyMethod, "%s", method)
	}
}
