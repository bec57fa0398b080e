package ticketcode

import (
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

// DecodeFormation reads three per-position bitmaps and counts the playable
// combinations for the bet type.
func DecodeFormation(code string) (*models.FormationSelection, error) {
	if len(code) < formationMinLength {
		return nil, fieldErr("formation", ErrStructuralTruncation, "need %d digits, have %d", formationMinLength, len(code))
	}
	bt, ok := betTypeAt(code, variantBetTypePos)
	if !ok {
		return nil, fieldErr("formation.bet_type", ErrFieldOutOfRange, "digit %q", code[variantBetTypePos])
	}
	if code[variantSubCodePos] != '0' {
		return nil, fieldErr("formation.marker", ErrFieldOutOfRange, "want '0', got %q", code[variantSubCodePos])
	}
	stake, err := stakeAt(code, "formation.stake", areaStakeStart)
	if err != nil {
		return nil, err
	}

	sel := &models.FormationSelection{
		BetType:   bt,
		First:     Bitmap(code, areaFirstStart),
		Second:    Bitmap(code, areaSecondStart),
		Third:     Bitmap(code, areaThirdStart),
		UnitStake: stake,
	}
	sel.PatternCount = FormationPatterns(bt, sel.First, sel.Second, sel.Third)
	return sel, nil
}

// FormationPatterns counts the combinations a formation selection buys
func FormationPatterns(bt models.BetType, first, second, third []int) int {
	switch bt {
	case models.BetTypeTrifecta:
		return OrderedTriples(first, second, third)
	case models.BetTypeTrio:
		return DistinctTriples(first, second, third)
	case models.BetTypeExacta:
		return OrderedPairs(first, second)
	case models.BetTypeBracketQuinella, models.BetTypeQuinella, models.BetTypeQuinellaPlace:
		return DistinctPairs(first, second)
	default:
		return len(first)
	}
}
