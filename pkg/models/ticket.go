package models

import "encoding/json"

// HeaderFields holds the buy-method independent prefix of a ticket code.
// Every field is nil when its slice is missing or fails its range check.
type HeaderFields struct {
	Track           *Track     `json:"track"`
	RaceNumber      *int       `json:"race_number"`
	Year            *int       `json:"year"`
	Round           *int       `json:"round"`
	Day             *int       `json:"day"`
	BuyMethod       *BuyMethod `json:"buy_method"`
	TicketSerial    *string    `json:"ticket_serial"`
	PointOfSale     *string    `json:"point_of_sale"`
	PointOfSaleCode *string    `json:"point_of_sale_code"`
	MachineID       *string    `json:"machine_id"`
}

// Selection is the buy-method specific body of a decoded ticket.
// Exactly one implementation exists per supported buy method.
type Selection interface {
	// Method is the buy method this selection was decoded for
	Method() BuyMethod
	// PrimaryBetType is the best-available bet type for record pre-fill
	PrimaryBetType() (BetType, bool)
	// TotalStake is derived from the selection's own stake rule
	TotalStake() int
	// Empty reports whether the selection carries nothing usable
	Empty() bool

	isSelection()
}

// NormalEntry is one independently priced line of a normal or cheer ticket
type NormalEntry struct {
	BetType BetType `json:"bet_type"`
	First   *int    `json:"first"`
	Second  *int    `json:"second"`
	Third   *int    `json:"third"`
	// Reverse is set on exacta lines bought in both orders
	Reverse   bool `json:"reverse"`
	UnitStake int  `json:"unit_stake"`
	Stake     int  `json:"stake"`
}

// NormalSelection covers both the normal and the cheer buy methods
type NormalSelection struct {
	BuyMethod BuyMethod     `json:"buy_method"`
	Entries   []NormalEntry `json:"entries"`
}

func (s *NormalSelection) Method() BuyMethod { return s.BuyMethod }

func (s *NormalSelection) PrimaryBetType() (BetType, bool) {
	if len(s.Entries) == 0 {
		return 0, false
	}
	return s.Entries[0].BetType, true
}

func (s *NormalSelection) TotalStake() int {
	total := 0
	for _, e := range s.Entries {
		total += e.Stake
	}
	return total
}

func (s *NormalSelection) Empty() bool { return len(s.Entries) == 0 }

func (*NormalSelection) isSelection() {}

// BoxSelection is a flat set of horses bet in every combination
type BoxSelection struct {
	BetType BetType `json:"bet_type"`
	Horses  []int   `json:"horses"`
	Stake   int     `json:"stake"`
}

func (s *BoxSelection) Method() BuyMethod { return BuyMethodBox }

func (s *BoxSelection) PrimaryBetType() (BetType, bool) { return s.BetType, true }

// TotalStake is the transmitted stake; box codes carry no combination count
func (s *BoxSelection) TotalStake() int { return s.Stake }

func (s *BoxSelection) Empty() bool { return len(s.Horses) == 0 }

func (*BoxSelection) isSelection() {}

// NagashiLayout names the two structurally different nagashi encodings
type NagashiLayout string

const (
	NagashiLayoutTriple NagashiLayout = "triple"
	NagashiLayoutPaired NagashiLayout = "paired"
)

// NagashiSelection fixes one or two axis horses against a pool of opponents
type NagashiSelection struct {
	BetType      BetType       `json:"bet_type"`
	Layout       NagashiLayout `json:"layout"`
	SubCode      int           `json:"sub_code"`
	Axis1        []int         `json:"axis1"`
	Axis2        []int         `json:"axis2"`
	Opponents    []int         `json:"opponents"`
	Multi        bool          `json:"multi"`
	UnitStake    int           `json:"unit_stake"`
	PatternCount int           `json:"pattern_count"`
}

func (s *NagashiSelection) Method() BuyMethod { return BuyMethodNagashi }

func (s *NagashiSelection) PrimaryBetType() (BetType, bool) { return s.BetType, true }

func (s *NagashiSelection) TotalStake() int { return s.UnitStake * s.PatternCount }

func (s *NagashiSelection) Empty() bool { return false }

func (*NagashiSelection) isSelection() {}

// FormationSelection picks an independent set of horses per finishing position
type FormationSelection struct {
	BetType      BetType `json:"bet_type"`
	First        []int   `json:"first"`
	Second       []int   `json:"second"`
	Third        []int   `json:"third"`
	UnitStake    int     `json:"unit_stake"`
	PatternCount int     `json:"pattern_count"`
}

func (s *FormationSelection) Method() BuyMethod { return BuyMethodFormation }

func (s *FormationSelection) PrimaryBetType() (BetType, bool) { return s.BetType, true }

func (s *FormationSelection) TotalStake() int { return s.UnitStake * s.PatternCount }

func (s *FormationSelection) Empty() bool { return false }

func (*FormationSelection) isSelection() {}

// Issue kinds recorded while decoding
const (
	IssueFieldOutOfRange       = "field_out_of_range"
	IssueStructuralTruncation  = "structural_truncation"
	IssueUnsupportedBuyMethod  = "unsupported_buy_method"
	IssueNonNumericInput       = "non_numeric_input"
	IssueUnrecognizedSelection = "unrecognized_selection"
)

// DecodeIssue is a non-fatal problem found while decoding one field or variant
type DecodeIssue struct {
	Kind    string `json:"kind"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DecodedTicket is the structured view of one scanned ticket code.
// It is built once per decode and never modified afterwards.
type DecodedTicket struct {
	Raw       string        `json:"raw"`
	Header    HeaderFields  `json:"header"`
	Selection Selection     `json:"selection,omitempty"`
	Issues    []DecodeIssue `json:"issues,omitempty"`
}

// TotalStake returns the selection's derived stake, or nil without a selection
func (t *DecodedTicket) TotalStake() *int {
	if t == nil || t.Selection == nil {
		return nil
	}
	total := t.Selection.TotalStake()
	return &total
}

// BetType returns the best-available bet type for record pre-fill
func (t *DecodedTicket) BetType() *BetType {
	if t == nil || t.Selection == nil {
		return nil
	}
	bt, ok := t.Selection.PrimaryBetType()
	if !ok {
		return nil
	}
	return &bt
}

// SelectionKind names the variant the selection decoded as, which is the
// buy method whose layout produced it
func (t *DecodedTicket) SelectionKind() *BuyMethod {
	if t == nil || t.Selection == nil {
		return nil
	}
	kind := t.Selection.Method()
	return &kind
}

// MarshalJSON adds the selection kind, total stake and bet type
func (t DecodedTicket) MarshalJSON() ([]byte, error) {
	type plain DecodedTicket
	return json.Marshal(struct {
		plain
		SelectionKind *BuyMethod `json:"selection_kind"`
		BetType       *BetType   `json:"bet_type"`
		TotalStake    *int       `json:"total_stake"`
	}{
		plain:         plain(t),
		SelectionKind: t.SelectionKind(),
		BetType:       t.BetType(),
		TotalStake:    t.TotalStake(),
	})
}
