// Package kpi models the quarterly target tracking, grade progression and
// user-submitted contribution entries shown on the performance view.
package kpi

import "time"

// MonthTargets is one month's scoring inside a quarter.
type MonthTargets struct {
	Overall int `json:"overall"`
	Speed   int `json:"speed"`
	ER      int `json:"er"`
	Test    int `json:"test"`
}

// QuarterTargets groups the three month scores of a quarter with its total.
type QuarterTargets struct {
	Months [3]MonthTargets `json:"months"`
	Total  int             `json:"total"`
}

// Targets maps year → quarter (1..4) → targets.
type Targets map[int]map[int]QuarterTargets

// Grade is the current/next grade card.
type Grade struct {
	Current string `json:"current"`
	Next    string `json:"next"`
	Image   string `json:"image"`
}

// Transition describes one grade-transition window.
type Transition struct {
	Type      string `json:"type"`
	Available bool   `json:"available"`
	LastDate  string `json:"lastDate"`
	NextDate  string `json:"nextDate"`
	Progress  int    `json:"progress"`
	Variant   string `json:"variant"`
}

// EntryStatus is the review state of a user-submitted entry.
type EntryStatus string

const (
	StatusPending  EntryStatus = "pending"
	StatusApproved EntryStatus = "approved"
	StatusRejected EntryStatus = "rejected"
)

// Comment is a reviewer or author remark on an entry.
type Comment struct {
	Author string    `json:"author"`
	Date   time.Time `json:"date"`
	Text   string    `json:"text"`
}

// HistoryItem records one change to an entry, newest first.
type HistoryItem struct {
	Date   time.Time `json:"date"`
	Text   string    `json:"text"`
	Author string    `json:"author"`
}

// Entry is a user-submitted contribution reviewed through the shared
// document.
type Entry struct {
	ID          string        `json:"id"`
	Code        string        `json:"code"`
	Period      string        `json:"period"`
	Date        time.Time     `json:"date"`
	Description string        `json:"description"`
	Result      string        `json:"result"`
	Status      EntryStatus   `json:"status"`
	Comments    []Comment     `json:"comments,omitempty"`
	History     []HistoryItem `json:"history,omitempty"`
}

// Band classifies a percentage score for badge coloring.
type Band int

const (
	BandLow Band = iota
	BandMid
	BandHigh
)

// BandOf buckets a score: 80 and above is high, 60 and above mid, the rest
// low.
func BandOf(score int) Band {
	switch {
	case score >= 80:
		return BandHigh
	case score >= 60:
		return BandMid
	default:
		return BandLow
	}
}

// QuarterOf returns the quarter (1..4) containing a date.
func QuarterOf(date time.Time) int {
	return (int(date.Month())-1)/3 + 1
}
