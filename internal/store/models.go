package store

import (
	"strings"
	"time"
)

// Credential is an access/refresh token pair bound to one (user, account) pair.
type Credential struct {
	UserID       int64
	AccountID    string
	AccessToken  string
	RefreshToken string
	Scope        []string
	Expiry       time.Time
	AccountLabel string
}

// HistoryRecord is the durable record of one successfully completed upload.
// Records are append-only and never mutated.
type HistoryRecord struct {
	ID           int64
	UserID       int64
	VideoID      string
	Title        string
	AccountLabel string
	Status       string
	UploadedAt   time.Time
}

// HistorySortField selects the history ordering column.
type HistorySortField string

const (
	SortByDate  HistorySortField = "date"
	SortByTitle HistorySortField = "title"
)

// HistoryQuery filters and orders a user's upload history.
type HistoryQuery struct {
	Search     string
	SortBy     HistorySortField
	Descending bool
}

// ParseSortField normalizes a sort field name, defaulting to date order.
func ParseSortField(value string) HistorySortField {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "title":
		return SortByTitle
	default:
		return SortByDate
	}
}

func joinScope(scope []string) string {
	return strings.Join(scope, " ")
}

func splitScope(raw string) []string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}
	return fields
}
