package ticketcode

import (
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

// ExtractHeader pulls the buy-method independent fields out of a code.
// Each field is extracted on its own; a field that is missing or out of
// range is left nil and reported as an issue without affecting the rest.
func ExtractHeader(code string) (models.HeaderFields, []models.DecodeIssue) {
	var (
		h      models.HeaderFields
		issues []models.DecodeIssue
	)
	note := func(err error) {
		issues = append(issues, toIssue(err))
	}

	if n, err := number(code, "track", trackStart, trackEnd); err != nil {
		note(err)
	} else if t := models.Track(n); !t.Valid() {
		note(fieldErr("track", ErrFieldOutOfRange, "unknown track code %02d", n))
	} else {
		h.Track = &t
	}

	if n, err := inRange(code, "race_number", raceStart, raceEnd, 1, 12); err != nil {
		note(err)
	} else {
		h.RaceNumber = &n
	}

	if n, err := inRange(code, "year", yearStart, yearEnd, 0, 99); err != nil {
		note(err)
	} else {
		h.Year = &n
	}

	if n, err := inRange(code, "round", roundStart, roundEnd, 1, 12); err != nil {
		note(err)
	} else {
		h.Round = &n
	}

	if n, err := inRange(code, "day", dayStart, dayEnd, 1, 31); err != nil {
		note(err)
	} else {
		h.Day = &n
	}

	if n, err := number(code, "buy_method", buyMethodPos, buyMethodPos+1); err != nil {
		note(err)
	} else if m := models.BuyMethod(n); !m.Valid() {
		note(fieldErr("buy_method", ErrUnsupportedBuyMethod, "unknown buy method %d", n))
	} else {
		h.BuyMethod = &m
	}

	if serial, ok := ExtractSerial(code); ok {
		h.TicketSerial = &serial
	} else {
		note(fieldErr("ticket_serial", ErrStructuralTruncation, "need %d digits, have %d", serialEnd, len(code)))
	}

	if raw, ok := slice(code, salesStart, salesEnd); ok {
		name := SalesLocationName(raw)
		h.PointOfSale = &name
		h.PointOfSaleCode = &raw
	} else {
		note(fieldErr("point_of_sale", ErrStructuralTruncation, "need %d digits, have %d", salesEnd, len(code)))
	}

	if id, ok := slice(code, machineStart, machineEnd); !ok {
		note(fieldErr("machine_id", ErrStructuralTruncation, "need %d digits, have %d", machineEnd, len(code)))
	} else if !AllDigits(id) {
		note(fieldErr("machine_id", ErrNonNumericInput, "%q", id))
	} else {
		h.MachineID = &id
	}

	return h, issues
}

// ExtractSerial returns the ticket serial without decoding anything else.
// It is kept as a string so leading zeros survive.
func ExtractSerial(code string) (string, bool) {
	serial, ok := slice(code, serialStart, serialEnd)
	if !ok || serial == "" {
		return "", false
	}
	return serial, true
}
