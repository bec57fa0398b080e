package ticketcode_test

import (
	"strings"
	"testing"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/testutil"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/ticketcode"
)

func hasIssue(issues []models.DecodeIssue, field, kind string) bool {
	for _, issue := range issues {
		if issue.Field == field && issue.Kind == kind {
			return true
		}
	}
	return false
}

func TestExtractHeader_AllFields(t *testing.T) {
	code := testutil.PadCode(testutil.DefaultHeader(models.BuyMethodBox).Code(), testutil.TicketLength)
	h, issues := ticketcode.ExtractHeader(code)

	if len(issues) != 0 {
		t.Errorf("Expected no issues, got %v", issues)
	}
	if h.Track == nil || *h.Track != models.TrackTokyo {
		t.Errorf("Expected track tokyo, got %v", h.Track)
	}
	if h.RaceNumber == nil || *h.RaceNumber != 11 {
		t.Errorf("Expected race 11, got %v", h.RaceNumber)
	}
	if h.Year == nil || *h.Year != 24 {
		t.Errorf("Expected year 24, got %v", h.Year)
	}
	if h.Round == nil || *h.Round != 5 {
		t.Errorf("Expected round 5, got %v", h.Round)
	}
	if h.Day == nil || *h.Day != 8 {
		t.Errorf("Expected day 8, got %v", h.Day)
	}
	if h.BuyMethod == nil || *h.BuyMethod != models.BuyMethodBox {
		t.Errorf("Expected buy method box, got %v", h.BuyMethod)
	}
	if h.TicketSerial == nil || *h.TicketSerial != "012345" {
		t.Errorf("Expected serial '012345', got %v", h.TicketSerial)
	}
	if h.PointOfSale == nil || *h.PointOfSale != "JRA東京" {
		t.Errorf("Expected point of sale 'JRA東京', got %v", h.PointOfSale)
	}
	if h.PointOfSaleCode == nil || *h.PointOfSaleCode != "0505" {
		t.Errorf("Expected point of sale code '0505', got %v", h.PointOfSaleCode)
	}
	if h.MachineID == nil || *h.MachineID != "302420000" {
		t.Errorf("Expected machine id '302420000', got %v", h.MachineID)
	}
}

func TestExtractHeader_FieldsDegradeIndependently(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(h *testutil.MockHeader)
		field  string
		kind   string
		check  func(h models.HeaderFields) bool
	}{
		{
			name:   "race above 12",
			mutate: func(h *testutil.MockHeader) { h.Race = 13 },
			field:  "race_number",
			kind:   models.IssueFieldOutOfRange,
			check:  func(h models.HeaderFields) bool { return h.RaceNumber == nil && h.Track != nil },
		},
		{
			name:   "race zero",
			mutate: func(h *testutil.MockHeader) { h.Race = 0 },
			field:  "race_number",
			kind:   models.IssueFieldOutOfRange,
			check:  func(h models.HeaderFields) bool { return h.RaceNumber == nil && h.Day != nil },
		},
		{
			name:   "unknown track",
			mutate: func(h *testutil.MockHeader) { h.Track = 11 },
			field:  "track",
			kind:   models.IssueFieldOutOfRange,
			check:  func(h models.HeaderFields) bool { return h.Track == nil && h.RaceNumber != nil },
		},
		{
			name:   "round above 12",
			mutate: func(h *testutil.MockHeader) { h.Round = 13 },
			field:  "round",
			kind:   models.IssueFieldOutOfRange,
			check:  func(h models.HeaderFields) bool { return h.Round == nil && h.Year != nil },
		},
		{
			name:   "day above 31",
			mutate: func(h *testutil.MockHeader) { h.Day = 32 },
			field:  "day",
			kind:   models.IssueFieldOutOfRange,
			check:  func(h models.HeaderFields) bool { return h.Day == nil && h.Round != nil },
		},
		{
			name:   "undefined buy method",
			mutate: func(h *testutil.MockHeader) { h.Method = 7 },
			field:  "buy_method",
			kind:   models.IssueUnsupportedBuyMethod,
			check:  func(h models.HeaderFields) bool { return h.BuyMethod == nil && h.TicketSerial != nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mh := testutil.DefaultHeader(models.BuyMethodNormal)
			tt.mutate(&mh)
			h, issues := ticketcode.ExtractHeader(testutil.PadCode(mh.Code(), testutil.TicketLength))
			if !hasIssue(issues, tt.field, tt.kind) {
				t.Errorf("Expected %s issue on %s, got %v", tt.kind, tt.field, issues)
			}
			if !tt.check(h) {
				t.Errorf("Unexpected header fields %+v", h)
			}
		})
	}
}

func TestExtractHeader_QuickPickIsDefined(t *testing.T) {
	code := testutil.PadCode(testutil.DefaultHeader(models.BuyMethodQuickPick).Code(), testutil.TicketLength)
	h, _ := ticketcode.ExtractHeader(code)
	if h.BuyMethod == nil || *h.BuyMethod != models.BuyMethodQuickPick {
		t.Errorf("Expected quick pick buy method, got %v", h.BuyMethod)
	}
}

func TestExtractHeader_UnknownSalesLocationPassesThrough(t *testing.T) {
	mh := testutil.DefaultHeader(models.BuyMethodNormal)
	mh.SalesCode = "9999"
	h, _ := ticketcode.ExtractHeader(testutil.PadCode(mh.Code(), testutil.TicketLength))
	if h.PointOfSale == nil || *h.PointOfSale != "9999" {
		t.Errorf("Expected raw point of sale '9999', got %v", h.PointOfSale)
	}
}

func TestExtractHeader_ShortCode(t *testing.T) {
	// 20 digits reach the race number but not the serial
	code := testutil.DefaultHeader(models.BuyMethodNormal).Code()[:20]
	h, issues := ticketcode.ExtractHeader(code)
	if h.RaceNumber == nil || *h.RaceNumber != 11 {
		t.Errorf("Expected race 11 from short code, got %v", h.RaceNumber)
	}
	if h.TicketSerial != nil {
		t.Errorf("Expected no serial, got %q", *h.TicketSerial)
	}
	if !hasIssue(issues, "ticket_serial", models.IssueStructuralTruncation) {
		t.Errorf("Expected truncation issue on ticket_serial, got %v", issues)
	}
}

func TestExtractSerial(t *testing.T) {
	code := testutil.PadCode(testutil.DefaultHeader(models.BuyMethodNormal).WithSerial("000123").Code(), 60)
	serial, ok := ticketcode.ExtractSerial(code)
	if !ok || serial != "000123" {
		t.Errorf("Expected serial '000123' with leading zeros, got %q (%v)", serial, ok)
	}

	if _, ok := ticketcode.ExtractSerial(strings.Repeat("1", 21)); ok {
		t.Error("Expected no serial from a 21-digit code")
	}
}

func TestSalesLocationName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"0909", "JRA阪神"},
		{"2100", "ウインズ新横浜"},
		{"3421", "ウインズ新横浜"},
		{"3481", "宮崎育成牧場"},
		{"1234", "1234"},
	}
	for _, tt := range tests {
		if got := ticketcode.SalesLocationName(tt.code); got != tt.want {
			t.Errorf("SalesLocationName(%s): expected %s, got %s", tt.code, tt.want, got)
		}
	}
}

func TestLookupBetType(t *testing.T) {
	tests := []struct {
		digit byte
		want  models.BetType
		ok    bool
	}{
		{'1', models.BetTypeWin, true},
		{'2', models.BetTypePlace, true},
		{'3', models.BetTypeBracketQuinella, true},
		{'4', 0, false},
		{'5', models.BetTypeQuinella, true},
		{'6', models.BetTypeExacta, true},
		{'7', models.BetTypeQuinellaPlace, true},
		{'8', models.BetTypeTrio, true},
		{'9', models.BetTypeTrifecta, true},
		{'0', 0, false},
		{'x', 0, false},
	}
	for _, tt := range tests {
		got, ok := ticketcode.LookupBetType(tt.digit)
		if ok != tt.ok || got != tt.want {
			t.Errorf("LookupBetType(%q): expected (%v, %v), got (%v, %v)", tt.digit, tt.want, tt.ok, got, ok)
		}
	}
}

func TestStake(t *testing.T) {
	tests := []struct {
		digits string
		want   int
	}{
		{"00001", 100},
		{"00100", 10000},
		{"00000", 0},
		{"12345", 1234500},
	}
	for _, tt := range tests {
		got, err := ticketcode.Stake(tt.digits)
		if err != nil {
			t.Fatalf("Stake(%s) failed: %v", tt.digits, err)
		}
		if got != tt.want {
			t.Errorf("Stake(%s): expected %d, got %d", tt.digits, tt.want, got)
		}
	}
}
