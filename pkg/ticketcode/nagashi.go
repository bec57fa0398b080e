package ticketcode

import (
	"strconv"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

// Nagashi sub-codes printed on triple-leg tickets
const (
	SubCodeTrifectaTwoAxis       = 1
	SubCodeTrioTwoAxis           = 3
	SubCodeTrifectaFirstAxis     = 4
	SubCodeTrifectaThirdAxis     = 6
	SubCodeTrioOneAxis           = 7
	minSubCode, maxSubCode       = 1, 7
	trifectaArrangementsPerCombo = 6
)

// DecodeNagashi reads an axis-plus-opponents selection. Trio and trifecta use
// three position bitmaps with a sub-code; every other bet type uses the
// compact single-axis layout.
func DecodeNagashi(code string) (*models.NagashiSelection, error) {
	if len(code) < nagashiMinLength {
		return nil, fieldErr("nagashi", ErrStructuralTruncation, "need %d digits, have %d", nagashiMinLength, len(code))
	}
	bt, ok := betTypeAt(code, variantBetTypePos)
	if !ok {
		return nil, fieldErr("nagashi.bet_type", ErrFieldOutOfRange, "digit %q", code[variantBetTypePos])
	}
	sub, err := strconv.Atoi(code[variantSubCodePos : variantSubCodePos+1])
	if err != nil {
		return nil, fieldErr("nagashi.sub_code", ErrNonNumericInput, "digit %q", code[variantSubCodePos])
	}

	if bt.TripleLeg() {
		return decodeNagashiTriple(code, bt, sub)
	}
	return decodeNagashiPaired(code, bt, sub)
}

func decodeNagashiTriple(code string, bt models.BetType, sub int) (*models.NagashiSelection, error) {
	if len(code) < nagashiTripleMinLength {
		return nil, fieldErr("nagashi", ErrStructuralTruncation, "need %d digits, have %d", nagashiTripleMinLength, len(code))
	}
	if sub < minSubCode || sub > maxSubCode {
		return nil, fieldErr("nagashi.sub_code", ErrFieldOutOfRange, "%d not in [%d,%d]", sub, minSubCode, maxSubCode)
	}
	stake, err := stakeAt(code, "nagashi.stake", areaStakeStart)
	if err != nil {
		return nil, err
	}

	sel := &models.NagashiSelection{
		BetType:   bt,
		Layout:    models.NagashiLayoutTriple,
		SubCode:   sub,
		Axis2:     []int{},
		Multi:     code[nagashiMultiStart] == '1' || code[nagashiMultiStart+1] == '1',
		UnitStake: stake,
	}
	area1 := Bitmap(code, areaFirstStart)
	area2 := Bitmap(code, areaSecondStart)
	area3 := Bitmap(code, areaThirdStart)

	switch {
	case bt == models.BetTypeTrifecta && sub == SubCodeTrifectaTwoAxis:
		sel.Axis1, sel.Axis2 = area1, area2
		sel.Opponents = without(area3, sel.Axis1, sel.Axis2)
		sel.PatternCount = len(sel.Opponents)
		if sel.Multi {
			sel.PatternCount *= trifectaArrangementsPerCombo
		}

	case bt == models.BetTypeTrifecta:
		// one axis fixed to first place, or to third for the other sub-codes
		pool := union(area1, area2)
		sel.Axis1 = area3
		if sub == SubCodeTrifectaFirstAxis {
			pool = union(area2, area3)
			sel.Axis1 = area1
		}
		sel.Opponents = without(pool, sel.Axis1)
		n := len(sel.Opponents)
		if sel.Multi {
			sel.PatternCount = choose2(n) * trifectaArrangementsPerCombo
		} else if n > 1 {
			sel.PatternCount = n * (n - 1)
		}

	case sub == SubCodeTrioTwoAxis:
		sel.Axis1, sel.Axis2 = area1, area2
		sel.Opponents = without(area3, sel.Axis1, sel.Axis2)
		sel.PatternCount = len(sel.Opponents)

	default:
		sel.Axis1 = area1
		sel.Opponents = without(union(area2, area3), sel.Axis1)
		sel.PatternCount = choose2(len(sel.Opponents))
	}
	return sel, nil
}

func decodeNagashiPaired(code string, bt models.BetType, sub int) (*models.NagashiSelection, error) {
	stake, err := stakeAt(code, "nagashi.stake", nagashiPairedStakeStart)
	if err != nil {
		return nil, err
	}
	sel := &models.NagashiSelection{
		BetType:   bt,
		Layout:    models.NagashiLayoutPaired,
		SubCode:   sub,
		Axis1:     []int{},
		Axis2:     []int{},
		Opponents: Bitmap(code, nagashiOpponentStart),
		UnitStake: stake,
	}
	if axis := horseAt(code, nagashiAxisStart); axis != nil {
		sel.Axis1 = []int{*axis}
	}
	sel.PatternCount = len(sel.Opponents)
	return sel, nil
}
