package ticketcode

import (
	"strconv"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

// HeaderLength is the shortest code the scanner treats as a ticket
const HeaderLength = 42

// VariantMinLength is the shortest code a selection decode is attempted on
const VariantMinLength = 46

// Positions are 0-based, end-exclusive.
const (
	trackStart, trackEnd         = 1, 3
	yearStart, yearEnd           = 6, 8
	roundStart, roundEnd         = 8, 10
	dayStart, dayEnd             = 10, 12
	raceStart, raceEnd           = 12, 14
	buyMethodPos                 = 14
	serialStart, serialEnd       = 16, 22
	salesStart, salesEnd         = 28, 32
	machineStart, machineEnd     = 34, 43
	variantBetTypePos            = 42
	variantSubCodePos            = 43
	normalStart                  = 42
	normalMinLength              = 55
	boxBetTypePos                = 43
	boxHorsesStart, boxHorsesEnd = 44, 66
	boxStakeStart                = 66
	boxMinLength                 = 71
	nagashiMinLength             = 70
	nagashiTripleMinLength       = 105
	nagashiAxisStart             = 44
	nagashiPairedStakeStart      = 46
	nagashiOpponentStart         = 51
	nagashiMultiStart            = 103
	areaFirstStart               = 44
	areaSecondStart              = 62
	areaThirdStart               = 80
	areaStakeStart               = 98
	formationMinLength           = 103

	stakeWidth  = 5
	bitmapWidth = 18
	maxHorse    = 18
)

// AllDigits reports whether s is non-empty and made only of ASCII digits
func AllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// slice returns code[start:end] or false when the code is too short
func slice(code string, start, end int) (string, bool) {
	if end > len(code) || start < 0 || start > end {
		return "", false
	}
	return code[start:end], true
}

// number parses code[start:end] as a decimal integer
func number(code, field string, start, end int) (int, error) {
	s, ok := slice(code, start, end)
	if !ok {
		return 0, fieldErr(field, ErrStructuralTruncation, "need %d digits, have %d", end, len(code))
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fieldErr(field, ErrNonNumericInput, "%q", s)
	}
	return n, nil
}

// inRange parses code[start:end] and checks it against [lo, hi]
func inRange(code, field string, start, end, lo, hi int) (int, error) {
	n, err := number(code, field, start, end)
	if err != nil {
		return 0, err
	}
	if n < lo || n > hi {
		return 0, fieldErr(field, ErrFieldOutOfRange, "%d not in [%d,%d]", n, lo, hi)
	}
	return n, nil
}

// Stake applies the stake rule: the five transmitted digits count hundreds
// of yen, so two zeros are appended before parsing.
func Stake(digits string) (int, error) {
	n, err := strconv.Atoi(digits + "00")
	if err != nil {
		return 0, fieldErr("stake", ErrNonNumericInput, "%q", digits)
	}
	return n, nil
}

func stakeAt(code, field string, start int) (int, error) {
	s, ok := slice(code, start, start+stakeWidth)
	if !ok {
		return 0, fieldErr(field, ErrStructuralTruncation, "stake needs %d digits, have %d", start+stakeWidth, len(code))
	}
	stake, err := Stake(s)
	if err != nil {
		return 0, fieldErr(field, ErrNonNumericInput, "%q", s)
	}
	return stake, nil
}

// horseAt returns the two-digit horse number at start, or nil when it is
// missing or outside 1..18
func horseAt(code string, start int) *int {
	s, ok := slice(code, start, start+2)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxHorse {
		return nil
	}
	return &n
}

// betTypeAt reads the single bet-type digit at pos
func betTypeAt(code string, pos int) (models.BetType, bool) {
	if pos < 0 || pos >= len(code) {
		return 0, false
	}
	return LookupBetType(code[pos])
}

// LookupBetType maps a bet-type digit; 0, 4 and non-digits yield false
func LookupBetType(digit byte) (models.BetType, bool) {
	if digit < '0' || digit > '9' {
		return 0, false
	}
	bt := models.BetType(digit - '0')
	if !bt.Valid() {
		return 0, false
	}
	return bt, true
}
