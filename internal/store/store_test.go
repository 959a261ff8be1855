package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"vidlift/internal/store"
	"vidlift/internal/testsupport"
)

func TestCredentialRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	cred := &store.Credential{
		UserID:       1,
		AccountID:    "acct-main",
		AccessToken:  "token-1",
		RefreshToken: "refresh-1",
		Scope:        []string{"upload", "readonly"},
		Expiry:       time.Now().Add(time.Hour).UTC().Truncate(time.Second),
		AccountLabel: "Main Channel",
	}
	if err := st.PutCredential(ctx, cred); err != nil {
		t.Fatalf("PutCredential: %v", err)
	}

	got, err := st.GetCredential(ctx, 1, "acct-main")
	if err != nil {
		t.Fatalf("GetCredential: %v", err)
	}
	if got.AccessToken != "token-1" || got.RefreshToken != "refresh-1" {
		t.Fatalf("unexpected tokens: %+v", got)
	}
	if len(got.Scope) != 2 || got.Scope[0] != "upload" {
		t.Fatalf("unexpected scope: %v", got.Scope)
	}
	if !got.Expiry.Equal(cred.Expiry) {
		t.Fatalf("expiry mismatch: got %v want %v", got.Expiry, cred.Expiry)
	}
	if got.AccountLabel != "Main Channel" {
		t.Fatalf("unexpected label %q", got.AccountLabel)
	}
}

func TestPutCredentialReplacesExisting(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := &store.Credential{UserID: 1, AccountID: "acct", AccessToken: "old"}
	if err := st.PutCredential(ctx, first); err != nil {
		t.Fatalf("PutCredential: %v", err)
	}
	second := &store.Credential{UserID: 1, AccountID: "acct", AccessToken: "new"}
	if err := st.PutCredential(ctx, second); err != nil {
		t.Fatalf("PutCredential replace: %v", err)
	}

	got, err := st.GetCredential(ctx, 1, "acct")
	if err != nil {
		t.Fatalf("GetCredential: %v", err)
	}
	if got.AccessToken != "new" {
		t.Fatalf("expected replaced token, got %q", got.AccessToken)
	}
}

func TestGetCredentialMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	_, err := st.GetCredential(context.Background(), 9, "nope")
	if !errors.Is(err, store.ErrCredentialNotFound) {
		t.Fatalf("expected ErrCredentialNotFound, got %v", err)
	}
}

func TestDeleteCredentialReportsRemoval(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	cred := &store.Credential{UserID: 2, AccountID: "acct", AccessToken: "tok"}
	if err := st.PutCredential(ctx, cred); err != nil {
		t.Fatalf("PutCredential: %v", err)
	}

	removed, err := st.DeleteCredential(ctx, 2, "acct")
	if err != nil {
		t.Fatalf("DeleteCredential: %v", err)
	}
	if !removed {
		t.Fatal("expected removal to be reported")
	}

	removed, err = st.DeleteCredential(ctx, 2, "acct")
	if err != nil {
		t.Fatalf("DeleteCredential second call: %v", err)
	}
	if removed {
		t.Fatal("expected no-op delete to report false")
	}
}

func TestCredentialsIsolatedPerUser(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := st.PutCredential(ctx, &store.Credential{UserID: 1, AccountID: "acct", AccessToken: "u1"}); err != nil {
		t.Fatalf("PutCredential user 1: %v", err)
	}
	if err := st.PutCredential(ctx, &store.Credential{UserID: 2, AccountID: "acct", AccessToken: "u2"}); err != nil {
		t.Fatalf("PutCredential user 2: %v", err)
	}

	got, err := st.GetCredential(ctx, 2, "acct")
	if err != nil {
		t.Fatalf("GetCredential: %v", err)
	}
	if got.AccessToken != "u2" {
		t.Fatalf("expected user 2 token, got %q", got.AccessToken)
	}

	accounts, err := st.ListAccounts(ctx, 1)
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if len(accounts) != 1 || accounts[0] != "acct" {
		t.Fatalf("unexpected accounts: %v", accounts)
	}
}

func TestAppendHistoryAssignsIDs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := &store.HistoryRecord{UserID: 1, VideoID: "vid-1", Title: "First", Status: "completed"}
	if err := st.AppendHistory(ctx, first); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}
	second := &store.HistoryRecord{UserID: 1, VideoID: "vid-2", Title: "Second", Status: "completed"}
	if err := st.AppendHistory(ctx, second); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}

	if first.ID == 0 || second.ID == 0 {
		t.Fatalf("expected assigned ids, got %d and %d", first.ID, second.ID)
	}
	if second.ID <= first.ID {
		t.Fatalf("expected increasing ids, got %d then %d", first.ID, second.ID)
	}
	if first.UploadedAt.IsZero() {
		t.Fatal("expected uploaded timestamp to be defaulted")
	}
}

func TestHistoryFilterAndSort(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	seed := []store.HistoryRecord{
		{UserID: 1, VideoID: "a", Title: "Banana Review", Status: "completed", UploadedAt: base},
		{UserID: 1, VideoID: "b", Title: "apple pie tutorial", Status: "completed", UploadedAt: base.Add(time.Hour)},
		{UserID: 1, VideoID: "c", Title: "Cherry Harvest", Status: "completed", UploadedAt: base.Add(2 * time.Hour)},
		{UserID: 2, VideoID: "d", Title: "Apple Orchard", Status: "completed", UploadedAt: base},
	}
	for i := range seed {
		record := seed[i]
		if err := st.AppendHistory(ctx, &record); err != nil {
			t.Fatalf("AppendHistory: %v", err)
		}
	}

	records, err := st.HistoryForUser(ctx, 1, store.HistoryQuery{})
	if err != nil {
		t.Fatalf("HistoryForUser: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records for user 1, got %d", len(records))
	}
	if records[0].VideoID != "a" || records[2].VideoID != "c" {
		t.Fatalf("expected ascending date order, got %v", records)
	}

	records, err = st.HistoryForUser(ctx, 1, store.HistoryQuery{SortBy: store.SortByDate, Descending: true})
	if err != nil {
		t.Fatalf("HistoryForUser desc: %v", err)
	}
	if records[0].VideoID != "c" {
		t.Fatalf("expected newest first, got %q", records[0].VideoID)
	}

	records, err = st.HistoryForUser(ctx, 1, store.HistoryQuery{SortBy: store.SortByTitle})
	if err != nil {
		t.Fatalf("HistoryForUser by title: %v", err)
	}
	if records[0].Title != "apple pie tutorial" || records[2].Title != "Cherry Harvest" {
		t.Fatalf("expected case-insensitive title order, got %v", titles(records))
	}

	records, err = st.HistoryForUser(ctx, 1, store.HistoryQuery{Search: "APPLE"})
	if err != nil {
		t.Fatalf("HistoryForUser search: %v", err)
	}
	if len(records) != 1 || records[0].VideoID != "b" {
		t.Fatalf("expected only the apple record, got %v", titles(records))
	}
}

func TestParseSortField(t *testing.T) {
	if store.ParseSortField(" Title ") != store.SortByTitle {
		t.Fatal("expected title sort")
	}
	if store.ParseSortField("") != store.SortByDate {
		t.Fatal("expected date default")
	}
	if store.ParseSortField("bogus") != store.SortByDate {
		t.Fatal("expected unknown field to default to date")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := st.AppendHistory(ctx, &store.HistoryRecord{UserID: 1, VideoID: "v", Title: "T", Status: "completed"}); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	records, err := reopened.HistoryForUser(ctx, 1, store.HistoryQuery{})
	if err != nil {
		t.Fatalf("HistoryForUser after reopen: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected persisted record, got %d", len(records))
	}
}

func titles(records []store.HistoryRecord) []string {
	out := make([]string, len(records))
	for i, record := range records {
		out[i] = record.Title
	}
	return out
}
