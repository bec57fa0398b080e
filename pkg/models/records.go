package models

import (
	"strings"
	"time"
)

// BetRecord represents a saved purchase record
type BetRecord struct {
	ID              int64     `json:"id"`
	PurchasedAt     time.Time `json:"purchased_at"`
	Track           Track     `json:"track"`
	RaceNumber      int       `json:"race_number"`
	BetType         BetType   `json:"bet_type"`
	TotalInvestment int       `json:"total_investment"`
	ReturnAmount    int       `json:"return_amount"`
	TicketSerial    *string   `json:"ticket_serial"`
	CreatedAt       time.Time `json:"created_at"`
}

// BetRecordInput is the editable form of a record, pre-filled from a scan
type BetRecordInput struct {
	PurchasedAt     time.Time `json:"purchased_at"`
	Track           Track     `json:"track"`
	RaceNumber      int       `json:"race_number"`
	BetType         BetType   `json:"bet_type"`
	TotalInvestment int       `json:"total_investment"`
	ReturnAmount    int       `json:"return_amount"`
	TicketSerial    *string   `json:"ticket_serial,omitempty"`
}

// Validate returns the list of problems with the input, empty when savable
func (in BetRecordInput) Validate() []string {
	var problems []string
	if !in.Track.Valid() {
		problems = append(problems, "track is required")
	}
	if in.RaceNumber < 1 || in.RaceNumber > 12 {
		problems = append(problems, "race_number must be between 1 and 12")
	}
	if !in.BetType.Valid() {
		problems = append(problems, "bet_type is required")
	}
	if in.TotalInvestment < 0 {
		problems = append(problems, "total_investment must not be negative")
	}
	if in.ReturnAmount < 0 {
		problems = append(problems, "return_amount must not be negative")
	}
	if in.PurchasedAt.IsZero() {
		problems = append(problems, "purchased_at is required")
	}
	return problems
}

// DraftFromTicket pre-fills a record from a valid decoded ticket.
// The return amount starts at zero and the purchase time at now.
func DraftFromTicket(t *DecodedTicket, now time.Time) *BetRecordInput {
	if t == nil {
		return nil
	}
	draft := &BetRecordInput{PurchasedAt: now}
	if t.Header.Track != nil {
		draft.Track = *t.Header.Track
	}
	if t.Header.RaceNumber != nil {
		draft.RaceNumber = *t.Header.RaceNumber
	}
	if bt := t.BetType(); bt != nil {
		draft.BetType = *bt
	}
	if total := t.TotalStake(); total != nil {
		draft.TotalInvestment = *total
	}
	if t.Header.TicketSerial != nil {
		serial := *t.Header.TicketSerial
		draft.TicketSerial = &serial
	}
	return draft
}

// Summary periods
const (
	PeriodAll   = "all"
	PeriodToday = "today"
	PeriodMonth = "month"
)

// ValidPeriod reports whether p names a summary period
func ValidPeriod(p string) bool {
	switch strings.ToLower(p) {
	case PeriodAll, PeriodToday, PeriodMonth:
		return true
	}
	return false
}

// RecordFilters defines filters for record queries. Since is inclusive and
// Until exclusive.
type RecordFilters struct {
	Track  *Track
	Since  *time.Time
	Until  *time.Time
	Limit  int
	Offset int
}

// PeriodFilters returns the purchase-date window for a summary period
func PeriodFilters(period string, now time.Time) RecordFilters {
	var filters RecordFilters
	switch strings.ToLower(period) {
	case PeriodToday:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 0, 1)
		filters.Since, filters.Until = &start, &end
	case PeriodMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 1, 0)
		filters.Since, filters.Until = &start, &end
	}
	return filters
}

// RecordSummary provides aggregate investment and return statistics
type RecordSummary struct {
	Period          string  `json:"period"`
	Count           int     `json:"count"`
	TotalInvestment int     `json:"total_investment"`
	TotalReturn     int     `json:"total_return"`
	Profit          int     `json:"profit"`
	RecoveryRatePct float64 `json:"recovery_rate_pct"`
}

// Derive fills profit and recovery rate from the totals; the recovery rate
// is zero without investment
func (s *RecordSummary) Derive() {
	s.Profit = s.TotalReturn - s.TotalInvestment
	s.RecoveryRatePct = 0
	if s.TotalInvestment > 0 {
		s.RecoveryRatePct = float64(s.TotalReturn) / float64(s.TotalInvestment) * 100
	}
}
