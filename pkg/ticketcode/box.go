package ticketcode

import (
	"strconv"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

// DecodeBox reads a box selection: one bet-type digit, up to eleven two-digit
// horse numbers ended early by "00", then a flat stake.
func DecodeBox(code string) (*models.BoxSelection, error) {
	if len(code) < boxMinLength {
		return nil, fieldErr("box", ErrStructuralTruncation, "need %d digits, have %d", boxMinLength, len(code))
	}
	bt, ok := betTypeAt(code, boxBetTypePos)
	if !ok {
		return nil, fieldErr("box.bet_type", ErrFieldOutOfRange, "digit %q", code[boxBetTypePos])
	}

	horses := []int{}
	for i := boxHorsesStart; i < boxHorsesEnd; i += 2 {
		n, err := strconv.Atoi(code[i : i+2])
		if err != nil {
			continue
		}
		if n == 0 {
			break
		}
		if n <= maxHorse {
			horses = append(horses, n)
		}
	}
	if len(horses) == 0 {
		return nil, fieldErr("box.horses", ErrEmptySelection, "no horse selected")
	}

	stake, err := stakeAt(code, "box.stake", boxStakeStart)
	if err != nil {
		return nil, err
	}
	return &models.BoxSelection{BetType: bt, Horses: horses, Stake: stake}, nil
}
