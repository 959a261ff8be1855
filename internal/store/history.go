package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// AppendHistory records a completed upload. The record's id is assigned by
// the database and written back to the record.
func (s *Store) AppendHistory(ctx context.Context, record *HistoryRecord) error {
	if record == nil {
		return errors.New("history record is nil")
	}
	if record.UploadedAt.IsZero() {
		record.UploadedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO upload_history (user_id, video_id, title, account_label, status, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.UserID,
		record.VideoID,
		record.Title,
		nullableString(record.AccountLabel),
		record.Status,
		record.UploadedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("history insert id: %w", err)
	}
	record.ID = id
	return nil
}

// HistoryForUser returns the user's upload history, filtered by a
// case-insensitive title substring and ordered by date or title. Title
// ordering is collation-aware so accented titles sort naturally.
func (s *Store) HistoryForUser(ctx context.Context, userID int64, query HistoryQuery) ([]HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, video_id, title, account_label, status, uploaded_at
		FROM upload_history
		WHERE user_id = ?
		ORDER BY uploaded_at ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	search := strings.ToLower(strings.TrimSpace(query.Search))
	var records []HistoryRecord
	for rows.Next() {
		record, scanErr := scanHistory(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		if search != "" && !strings.Contains(strings.ToLower(record.Title), search) {
			continue
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	sortHistory(records, query)
	return records, nil
}

func sortHistory(records []HistoryRecord, query HistoryQuery) {
	switch query.SortBy {
	case SortByTitle:
		collator := collate.New(language.Und, collate.IgnoreCase)
		sort.SliceStable(records, func(i, j int) bool {
			cmp := collator.CompareString(records[i].Title, records[j].Title)
			if query.Descending {
				return cmp > 0
			}
			return cmp < 0
		})
	default:
		if query.Descending {
			sort.SliceStable(records, func(i, j int) bool {
				return records[i].UploadedAt.After(records[j].UploadedAt)
			})
		}
	}
}

func scanHistory(row rowScanner) (*HistoryRecord, error) {
	var (
		record       HistoryRecord
		accountLabel sql.NullString
		uploadedAt   string
	)
	err := row.Scan(&record.ID, &record.UserID, &record.VideoID, &record.Title, &accountLabel, &record.Status, &uploadedAt)
	if err != nil {
		return nil, fmt.Errorf("scan history record: %w", err)
	}

	record.AccountLabel = accountLabel.String
	parsed, parseErr := time.Parse(time.RFC3339Nano, uploadedAt)
	if parseErr != nil {
		return nil, fmt.Errorf("parse history timestamp: %w", parseErr)
	}
	record.UploadedAt = parsed
	return &record, nil
}
