package store

import (
	"testing"
	"time"

	"github.com/danielsct56bm/cerro-service/internal/models"
)

func TestResolveWorkSession(t *testing.T) {
	morning := models.WorkSession{SessionID: "morning", Name: "Morning", StartTime: "08:00", EndTime: "12:00", IsActive: true}
	afternoon := models.WorkSession{SessionID: "afternoon", Name: "Afternoon", StartTime: "12:00", EndTime: "18:00", IsActive: true}
	inactive := models.WorkSession{SessionID: "night", Name: "Night", StartTime: "00:00", EndTime: "23:59", IsActive: false}

	at := func(hour, minute int) time.Time {
		return time.Date(2026, 5, 1, hour, minute, 0, 0, time.Local)
	}

	tests := []struct {
		name     string
		sessions []models.WorkSession
		now      time.Time
		wantID   string
		found    bool
	}{
		{"within morning", []models.WorkSession{morning, afternoon}, at(9, 30), "morning", true},
		{"within afternoon", []models.WorkSession{morning, afternoon}, at(15, 0), "afternoon", true},
		{"boundary start inclusive", []models.WorkSession{morning}, at(8, 0), "morning", true},
		{"boundary end inclusive", []models.WorkSession{morning}, at(12, 0), "morning", true},
		{"outside all windows", []models.WorkSession{morning, afternoon}, at(22, 0), "", false},
		{"inactive skipped", []models.WorkSession{inactive}, at(10, 0), "", false},
		{"overlap first match wins", []models.WorkSession{morning, {SessionID: "overlap", StartTime: "09:00", EndTime: "11:00", IsActive: true}}, at(10, 0), "morning", true},
		{"no sessions", nil, at(10, 0), "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			session, found := ResolveWorkSession(tc.sessions, tc.now)
			if found != tc.found {
				t.Fatalf("found=%v, want %v", found, tc.found)
			}
			if found && session.SessionID != tc.wantID {
				t.Fatalf("resolved %s, want %s", session.SessionID, tc.wantID)
			}
		})
	}
}

func TestParseMinutes(t *testing.T) {
	if got, ok := parseMinutes("08:30"); !ok || got != 510 {
		t.Fatalf("parseMinutes(08:30)=%d,%v", got, ok)
	}
	if got, ok := parseMinutes("08:30:15"); !ok || got != 510 {
		t.Fatalf("parseMinutes(08:30:15)=%d,%v", got, ok)
	}
	if _, ok := parseMinutes("not a time"); ok {
		t.Fatal("expected parse failure")
	}
}
