package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	JobStatsKeyPrefix  = "stats:jobs:%s"
	DashboardKeyPrefix = "dashboard:%s:%s"
)

const (
	JobStatsTTL  = 10 * time.Minute
	DashboardTTL = 5 * time.Minute
)

// DashboardTimeframes are the windows the dashboard summary is cached for.
var DashboardTimeframes = []string{"all", "daily", "weekly", "monthly"}

func JobStatsKey(userID string) string {
	return fmt.Sprintf(JobStatsKeyPrefix, userID)
}

func DashboardKey(userID, timeframe string) string {
	return fmt.Sprintf(DashboardKeyPrefix, userID, timeframe)
}

// InvalidateUser drops every cached aggregate of userID. Call after any mutation
// that changes projects, entries or applications.
func (s *Store) InvalidateUser(ctx context.Context, userID string) {
	keys := []string{JobStatsKey(userID)}
	for _, tf := range DashboardTimeframes {
		keys = append(keys, DashboardKey(userID, tf))
	}
	s.Invalidate(ctx, keys...)
}
