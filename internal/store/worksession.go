package store

import (
	"time"

	"github.com/danielsct56bm/cerro-service/internal/models"
)

// ResolveWorkSession picks the active session whose [start,end] window
// contains the time of day of now. Overlapping windows are broken by
// creation order: sessions must be passed ordered by created_at and
// the first match wins.
func ResolveWorkSession(sessions []models.WorkSession, now time.Time) (models.WorkSession, bool) {
	current := now.Hour()*60 + now.Minute()
	for _, session := range sessions {
		if !session.IsActive {
			continue
		}
		start, ok := parseMinutes(session.StartTime)
		if !ok {
			continue
		}
		end, ok := parseMinutes(session.EndTime)
		if !ok {
			continue
		}
		if start <= current && current <= end {
			return session, true
		}
	}
	return models.WorkSession{}, false
}

// parseMinutes accepts HH:MM or HH:MM:SS clock strings.
func parseMinutes(value string) (int, bool) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		t, err = time.Parse("15:04:05", value)
		if err != nil {
			return 0, false
		}
	}
	return t.Hour()*60 + t.Minute(), true
}
