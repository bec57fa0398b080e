package testutil

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

// TicketLength is the length of a printed ticket code
const TicketLength = 95

// MockHeader describes the common prefix of a ticket code
type MockHeader struct {
	Track     int
	Year      int
	Round     int
	Day       int
	Race      int
	Method    models.BuyMethod
	Serial    string
	SalesCode string
	Machine   string
}

// DefaultHeader creates a Tokyo race 11 header for the given buy method
func DefaultHeader(method models.BuyMethod) MockHeader {
	return MockHeader{
		Track:     int(models.TrackTokyo),
		Year:      24,
		Round:     5,
		Day:       8,
		Race:      11,
		Method:    method,
		Serial:    "012345",
		SalesCode: "0505",
		Machine:   "30242000",
	}
}

// WithSerial returns a copy of the header with another ticket serial
func (h MockHeader) WithSerial(serial string) MockHeader {
	h.Serial = serial
	return h
}

// Code renders the 42-digit header; the machine id's last digit is the
// first digit of whatever body follows.
func (h MockHeader) Code() string {
	return fmt.Sprintf("0%02d000%02d%02d%02d%02d%d0%6s000000%4s00%8s",
		h.Track, h.Year, h.Round, h.Day, h.Race, int(h.Method), h.Serial, h.SalesCode, h.Machine)
}

// StakeDigits renders a yen amount as the five transmitted stake digits
func StakeDigits(yen int) string {
	return fmt.Sprintf("%05d", yen/100)
}

// BitmapDigits renders horse numbers as an 18-position presence map
func BitmapDigits(horses ...int) string {
	b := []byte(strings.Repeat("0", 18))
	for _, h := range horses {
		b[h-1] = '1'
	}
	return string(b)
}

// PadCode right-pads a code with zeros up to n digits
func PadCode(code string, n int) string {
	if len(code) >= n {
		return code
	}
	return code + strings.Repeat("0", n-len(code))
}

// MockNormalEntry renders one normal/cheer record
func MockNormalEntry(bt models.BetType, first, second, third int, reverse bool, stakeYen int) string {
	stake := StakeDigits(stakeYen)
	switch bt {
	case models.BetTypeWin, models.BetTypePlace:
		return fmt.Sprintf("%d%02d00%s", int(bt), first, stake)
	case models.BetTypeExacta:
		flag := "00"
		if reverse {
			flag = "01"
		}
		return fmt.Sprintf("%d%02d%02d%s%s", int(bt), first, second, flag, stake)
	case models.BetTypeTrio, models.BetTypeTrifecta:
		return fmt.Sprintf("%d%02d%02d%02d%s", int(bt), first, second, third, stake)
	default:
		return fmt.Sprintf("%d%02d%02d00%s", int(bt), first, second, stake)
	}
}

// MockNormalCode creates a full normal or cheer ticket from rendered entries
func MockNormalCode(h MockHeader, entries ...string) string {
	return PadCode(h.Code()+strings.Join(entries, ""), TicketLength)
}

// MockBoxCode creates a box ticket; horses beyond eleven are dropped
func MockBoxCode(h MockHeader, bt models.BetType, horses []int, stakeYen int) string {
	var pairs strings.Builder
	for i, horse := range horses {
		if i == 11 {
			break
		}
		fmt.Fprintf(&pairs, "%02d", horse)
	}
	body := fmt.Sprintf("0%d%s%s", int(bt), PadCode(pairs.String(), 22), StakeDigits(stakeYen))
	return PadCode(h.Code()+body, TicketLength)
}

// MockNagashiPairedCode creates a single-axis nagashi ticket for a paired bet type
func MockNagashiPairedCode(h MockHeader, bt models.BetType, axis int, opponents []int, stakeYen int) string {
	body := fmt.Sprintf("%d1%02d%s%s", int(bt), axis, StakeDigits(stakeYen), BitmapDigits(opponents...))
	return PadCode(h.Code()+body, TicketLength)
}

// MockNagashiTripleCode creates a trio/trifecta nagashi ticket
func MockNagashiTripleCode(h MockHeader, bt models.BetType, sub int, area1, area2, area3 []int, stakeYen int, multi bool) string {
	flag := "00"
	if multi {
		flag = "10"
	}
	return h.Code() + fmt.Sprintf("%d%d%s%s%s%s%s", int(bt), sub,
		BitmapDigits(area1...), BitmapDigits(area2...), BitmapDigits(area3...), StakeDigits(stakeYen), flag)
}

// MockFormationCode creates a formation ticket
func MockFormationCode(h MockHeader, bt models.BetType, first, second, third []int, stakeYen int) string {
	return h.Code() + fmt.Sprintf("%d0%s%s%s%s00", int(bt),
		BitmapDigits(first...), BitmapDigits(second...), BitmapDigits(third...), StakeDigits(stakeYen))
}

// MockBetRecordInput creates a savable record input
func MockBetRecordInput(track models.Track, race int, bt models.BetType, stake, ret int) models.BetRecordInput {
	return models.BetRecordInput{
		PurchasedAt:     time.Date(2024, 5, 8, 10, 30, 0, 0, time.UTC),
		Track:           track,
		RaceNumber:      race,
		BetType:         bt,
		TotalInvestment: stake,
		ReturnAmount:    ret,
	}
}

// FakeClock is a settable clock for session tests
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock stopped at start
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the current fake time
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Helper functions
func PtrInt(i int) *int {
	return &i
}
