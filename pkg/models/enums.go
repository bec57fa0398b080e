package models

import (
	"fmt"
	"strings"
)

// Track identifies one of the ten JRA racecourses
type Track int

const (
	TrackSapporo   Track = 1
	TrackHakodate  Track = 2
	TrackFukushima Track = 3
	TrackNiigata   Track = 4
	TrackTokyo     Track = 5
	TrackNakayama  Track = 6
	TrackChukyo    Track = 7
	TrackKyoto     Track = 8
	TrackHanshin   Track = 9
	TrackKokura    Track = 10
)

var trackNames = map[Track]string{
	TrackSapporo:   "sapporo",
	TrackHakodate:  "hakodate",
	TrackFukushima: "fukushima",
	TrackNiigata:   "niigata",
	TrackTokyo:     "tokyo",
	TrackNakayama:  "nakayama",
	TrackChukyo:    "chukyo",
	TrackKyoto:     "kyoto",
	TrackHanshin:   "hanshin",
	TrackKokura:    "kokura",
}

var trackDisplayNames = map[Track]string{
	TrackSapporo:   "札幌",
	TrackHakodate:  "函館",
	TrackFukushima: "福島",
	TrackNiigata:   "新潟",
	TrackTokyo:     "東京",
	TrackNakayama:  "中山",
	TrackChukyo:    "中京",
	TrackKyoto:     "京都",
	TrackHanshin:   "阪神",
	TrackKokura:    "小倉",
}

// Valid reports whether t is one of the ten racecourses
func (t Track) Valid() bool {
	_, ok := trackNames[t]
	return ok
}

func (t Track) String() string {
	if name, ok := trackNames[t]; ok {
		return name
	}
	return fmt.Sprintf("track(%d)", int(t))
}

// DisplayName returns the name printed on the ticket
func (t Track) DisplayName() string {
	return trackDisplayNames[t]
}

func (t Track) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Track) UnmarshalText(text []byte) error {
	parsed, ok := ParseTrack(string(text))
	if !ok {
		return fmt.Errorf("unknown track %q", string(text))
	}
	*t = parsed
	return nil
}

// ParseTrack accepts either the romanized or the printed name
func ParseTrack(s string) (Track, bool) {
	s = strings.TrimSpace(s)
	for t, name := range trackNames {
		if strings.EqualFold(name, s) || trackDisplayNames[t] == s {
			return t, true
		}
	}
	return 0, false
}

// BuyMethod selects which selection encoding the ticket body uses
type BuyMethod int

const (
	BuyMethodNormal    BuyMethod = 0
	BuyMethodBox       BuyMethod = 1
	BuyMethodNagashi   BuyMethod = 2
	BuyMethodFormation BuyMethod = 3
	BuyMethodQuickPick BuyMethod = 4
	BuyMethodCheer     BuyMethod = 5
)

var buyMethodNames = map[BuyMethod]string{
	BuyMethodNormal:    "normal",
	BuyMethodBox:       "box",
	BuyMethodNagashi:   "nagashi",
	BuyMethodFormation: "formation",
	BuyMethodQuickPick: "quick_pick",
	BuyMethodCheer:     "cheer",
}

// Valid reports whether m is one of the six defined buy methods
func (m BuyMethod) Valid() bool {
	_, ok := buyMethodNames[m]
	return ok
}

// Supported reports whether the decoder understands m's layout
func (m BuyMethod) Supported() bool {
	return m.Valid() && m != BuyMethodQuickPick
}

func (m BuyMethod) String() string {
	if name, ok := buyMethodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("buy_method(%d)", int(m))
}

func (m BuyMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// BetType is the wager kind (式別)
type BetType int

const (
	BetTypeWin             BetType = 1
	BetTypePlace           BetType = 2
	BetTypeBracketQuinella BetType = 3
	BetTypeQuinella        BetType = 5
	BetTypeExacta          BetType = 6
	BetTypeQuinellaPlace   BetType = 7
	BetTypeTrio            BetType = 8
	BetTypeTrifecta        BetType = 9
)

var betTypeNames = map[BetType]string{
	BetTypeWin:             "win",
	BetTypePlace:           "place",
	BetTypeBracketQuinella: "bracket_quinella",
	BetTypeQuinella:        "quinella",
	BetTypeExacta:          "exacta",
	BetTypeQuinellaPlace:   "quinella_place",
	BetTypeTrio:            "trio",
	BetTypeTrifecta:        "trifecta",
}

var betTypeDisplayNames = map[BetType]string{
	BetTypeWin:             "単勝",
	BetTypePlace:           "複勝",
	BetTypeBracketQuinella: "枠連",
	BetTypeQuinella:        "馬連",
	BetTypeExacta:          "馬単",
	BetTypeQuinellaPlace:   "ワイド",
	BetTypeTrio:            "3連複",
	BetTypeTrifecta:        "3連単",
}

// BetTypes lists every bet type in the order the sales terminal shows them
var BetTypes = []BetType{
	BetTypeWin,
	BetTypePlace,
	BetTypeBracketQuinella,
	BetTypeQuinella,
	BetTypeQuinellaPlace,
	BetTypeExacta,
	BetTypeTrio,
	BetTypeTrifecta,
}

func (b BetType) Valid() bool {
	_, ok := betTypeNames[b]
	return ok
}

// TripleLeg reports whether the wager covers the first three finishers
func (b BetType) TripleLeg() bool {
	return b == BetTypeTrio || b == BetTypeTrifecta
}

func (b BetType) String() string {
	if name, ok := betTypeNames[b]; ok {
		return name
	}
	return fmt.Sprintf("bet_type(%d)", int(b))
}

// DisplayName returns the name printed on the ticket
func (b BetType) DisplayName() string {
	return betTypeDisplayNames[b]
}

func (b BetType) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *BetType) UnmarshalText(text []byte) error {
	parsed, ok := ParseBetType(string(text))
	if !ok {
		return fmt.Errorf("unknown bet type %q", string(text))
	}
	*b = parsed
	return nil
}

// ParseBetType accepts either the romanized or the printed name
func ParseBetType(s string) (BetType, bool) {
	s = strings.TrimSpace(s)
	for b, name := range betTypeNames {
		if strings.EqualFold(name, s) || betTypeDisplayNames[b] == s {
			return b, true
		}
	}
	return 0, false
}
