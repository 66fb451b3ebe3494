package sweep

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shelfline/shelfline-server/internal/domain"
	"github.com/shelfline/shelfline-server/internal/id"
	"github.com/shelfline/shelfline-server/internal/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	s, err := sqlite.Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// borrowAt creates a physical book and an open loan at the given time.
func borrowAt(t *testing.T, s *sqlite.Store, userID, title string, at time.Time) *domain.BorrowRecord {
	t.Helper()
	ctx := context.Background()
	book := &domain.Book{
		ID:        id.MustGenerate("bk"),
		Title:     title,
		Copies:    1,
		CreatedAt: at,
		UpdatedAt: at,
	}
	if err := s.CreateBook(ctx, book); err != nil {
		t.Fatalf("create book: %v", err)
	}
	record, err := s.BorrowBook(ctx, userID, book.ID, at)
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}
	return record
}

func newTestSweeper(s *sqlite.Store, now time.Time) *Sweeper {
	sw := New(s, Config{}, nil)
	sw.SetNow(func() time.Time { return now })
	return sw
}

func notificationsFor(t *testing.T, s *sqlite.Store, userID string) []*domain.Notification {
	t.Helper()
	list, err := s.ListUserNotifications(context.Background(), userID)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	return list
}

func TestRunOnceBuckets(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	// Fresh loan, two days old: no notification.
	borrowAt(t, s, "fresh", "Fresh Loan", now.Add(-2*24*time.Hour))
	// Three days old: reminder.
	borrowAt(t, s, "due", "Due Soon", now.Add(-3*24*time.Hour))
	// Five days old: overdue.
	borrowAt(t, s, "late", "Long Gone", now.Add(-5*24*time.Hour))

	sw := newTestSweeper(s, now)
	if err := sw.RunOnce(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if list := notificationsFor(t, s, "fresh"); len(list) != 0 {
		t.Errorf("expected no notification for fresh loan, got %d", len(list))
	}

	due := notificationsFor(t, s, "due")
	if len(due) != 1 || due[0].Type != domain.NotificationReminder {
		t.Fatalf("expected one reminder, got %+v", due)
	}
	if want := `Reminder: Please return "Due Soon" before the 5-day limit.`; due[0].Message != want {
		t.Errorf("reminder message = %q, want %q", due[0].Message, want)
	}

	late := notificationsFor(t, s, "late")
	if len(late) != 1 || late[0].Type != domain.NotificationOverdue {
		t.Fatalf("expected one overdue, got %+v", late)
	}
	if want := `Overdue: You failed to return "Long Gone". A fine may apply.`; late[0].Message != want {
		t.Errorf("overdue message = %q, want %q", late[0].Message, want)
	}
}

func TestRunOnceBoundaries(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	// One second short of three whole days: still quiet.
	borrowAt(t, s, "almost", "Almost Due", now.Add(-3*24*time.Hour+time.Second))
	// Exactly three days: reminder fires.
	borrowAt(t, s, "exact", "Exactly Due", now.Add(-3*24*time.Hour))
	// One second short of five days: still a reminder, not overdue.
	borrowAt(t, s, "edge", "Nearly Late", now.Add(-5*24*time.Hour+time.Second))

	sw := newTestSweeper(s, now)
	if err := sw.RunOnce(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if list := notificationsFor(t, s, "almost"); len(list) != 0 {
		t.Errorf("expected nothing below the reminder threshold, got %d", len(list))
	}
	if list := notificationsFor(t, s, "exact"); len(list) != 1 || list[0].Type != domain.NotificationReminder {
		t.Errorf("expected reminder at exactly three days, got %+v", list)
	}
	if list := notificationsFor(t, s, "edge"); len(list) != 1 || list[0].Type != domain.NotificationReminder {
		t.Errorf("expected reminder just below five days, got %+v", list)
	}
}

func TestRunOnceIdempotent(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	borrowAt(t, s, "user-1", "Repeat Offender", now.Add(-4*24*time.Hour))

	sw := newTestSweeper(s, now)
	for i := 0; i < 5; i++ {
		if err := sw.RunOnce(context.Background()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	list := notificationsFor(t, s, "user-1")
	if len(list) != 1 {
		t.Errorf("expected a single reminder after repeated runs, got %d", len(list))
	}
}

func TestRunOnceEscalation(t *testing.T) {
	s := newTestStore(t)
	borrowed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	record := borrowAt(t, s, "user-1", "Escalating", borrowed)

	sw := newTestSweeper(s, borrowed.Add(3*24*time.Hour))
	if err := sw.RunOnce(context.Background()); err != nil {
		t.Fatalf("reminder run: %v", err)
	}

	// Two days later the same loan crosses into overdue; the reminder
	// stays and an overdue notification joins it.
	sw.SetNow(func() time.Time { return borrowed.Add(5 * 24 * time.Hour) })
	if err := sw.RunOnce(context.Background()); err != nil {
		t.Fatalf("overdue run: %v", err)
	}
	if err := sw.RunOnce(context.Background()); err != nil {
		t.Fatalf("repeat overdue run: %v", err)
	}

	list := notificationsFor(t, s, "user-1")
	if len(list) != 2 {
		t.Fatalf("expected reminder plus overdue, got %d", len(list))
	}
	types := map[domain.NotificationType]bool{}
	for _, n := range list {
		types[n.Type] = true
		if n.BorrowID != record.ID {
			t.Errorf("notification not linked to loan: %+v", n)
		}
	}
	if !types[domain.NotificationReminder] || !types[domain.NotificationOverdue] {
		t.Errorf("expected both types, got %+v", types)
	}
}

func TestRunOnceSkipsReturned(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	record := borrowAt(t, s, "user-1", "Returned In Time", now.Add(-6*24*time.Hour))
	if _, err := s.ReturnBook(ctx, record.UserID, record.BookID, now.Add(-24*time.Hour)); err != nil {
		t.Fatalf("return: %v", err)
	}

	sw := newTestSweeper(s, now)
	if err := sw.RunOnce(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	if list := notificationsFor(t, s, "user-1"); len(list) != 0 {
		t.Errorf("expected no notifications for a closed loan, got %d", len(list))
	}
}

func TestRunOnceCustomThresholds(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	borrowAt(t, s, "user-1", "Short Leash", now.Add(-24*time.Hour))

	sw := New(s, Config{ReminderDays: 1, OverdueDays: 2}, nil)
	sw.SetNow(func() time.Time { return now })
	if err := sw.RunOnce(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	list := notificationsFor(t, s, "user-1")
	if len(list) != 1 || list[0].Type != domain.NotificationReminder {
		t.Fatalf("expected reminder at one day, got %+v", list)
	}
	if want := `Reminder: Please return "Short Leash" before the 2-day limit.`; list[0].Message != want {
		t.Errorf("message = %q, want %q", list[0].Message, want)
	}
}

func TestElapsedDays(t *testing.T) {
	base := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		ago  time.Duration
		want int
	}{
		{"zero", 0, 0},
		{"under a day", 23 * time.Hour, 0},
		{"exactly a day", 24 * time.Hour, 1},
		{"just under five", 5*24*time.Hour - time.Second, 4},
		{"clock skew", -time.Hour, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := elapsedDays(base.Add(-tt.ago), base); got != tt.want {
				t.Errorf("elapsedDays = %d, want %d", got, tt.want)
			}
		})
	}
}
