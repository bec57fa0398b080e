package ticketcode

import (
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

// DecodeNormal reads the entry list shared by the normal and cheer buy
// methods. The list ends at a 0 or unknown bet-type digit, or when the code
// cannot hold another stake; a short or empty list is not an error.
func DecodeNormal(code string, method models.BuyMethod) (*models.NormalSelection, error) {
	sel := &models.NormalSelection{BuyMethod: method, Entries: []models.NormalEntry{}}
	if len(code) < normalMinLength {
		return sel, fieldErr("entries", ErrStructuralTruncation, "need %d digits, have %d", normalMinLength, len(code))
	}

	pos := normalStart
	for pos < len(code) {
		bt, ok := LookupBetType(code[pos])
		if !ok {
			break
		}

		entry := models.NormalEntry{BetType: bt, First: horseAt(code, pos+1)}
		var stakeStart int
		switch bt {
		case models.BetTypeWin, models.BetTypePlace:
			// type, first, "00"
			stakeStart = pos + 5
		case models.BetTypeExacta:
			// type, first, second, two-digit reverse flag
			entry.Second = horseAt(code, pos+3)
			if flag, ok := slice(code, pos+5, pos+7); ok {
				entry.Reverse = flag == "01"
			}
			stakeStart = pos + 7
		case models.BetTypeBracketQuinella, models.BetTypeQuinella, models.BetTypeQuinellaPlace:
			// type, first, second, "00"
			entry.Second = horseAt(code, pos+3)
			stakeStart = pos + 7
		case models.BetTypeTrio, models.BetTypeTrifecta:
			entry.Second = horseAt(code, pos+3)
			entry.Third = horseAt(code, pos+5)
			stakeStart = pos + 7
		}

		stake, err := stakeAt(code, "entries.stake", stakeStart)
		if err != nil {
			break
		}
		entry.UnitStake = stake
		entry.Stake = stake
		if entry.Reverse {
			entry.Stake = stake * 2
		}
		sel.Entries = append(sel.Entries, entry)
		pos = stakeStart + stakeWidth
	}
	return sel, nil
}
