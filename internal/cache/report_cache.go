package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"learnpool-client/internal/model"
)

// ReportCache keeps the grouped session report in redis for its TTL, with
// a short-lived dirty marker set whenever a question or vote lands so a
// just-invalidated report is not re-cached from a racing reader. Cached
// payloads never include per-viewer fields (my_feedback); the service
// overlays those after a hit.
type ReportCache struct {
	client         *redisv9.Client
	reportTTL      time.Duration
	dirtyMarkerTTL time.Duration
}

func NewReportCache(client *redisv9.Client, reportTTL, dirtyMarkerTTL time.Duration) *ReportCache {
	if reportTTL <= 0 {
		reportTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &ReportCache{
		client:         client,
		reportTTL:      reportTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

func (c *ReportCache) GetReport(ctx context.Context, sessionID uint) (*model.SessionReport, bool, error) {
	key := c.reportKey(sessionID)
	raw, err := c.client.Get(ctx, key).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get report failed: %w", err)
	}

	var report model.SessionReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached report failed: %w", err)
	}
	return &report, true, nil
}

func (c *ReportCache) SetReport(ctx context.Context, sessionID uint, report *model.SessionReport) error {
	key := c.reportKey(sessionID)
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report cache failed: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.reportTTL).Err(); err != nil {
		return fmt.Errorf("redis set report failed: %w", err)
	}
	return nil
}

func (c *ReportCache) DeleteReport(ctx context.Context, sessionID uint) error {
	key := c.reportKey(sessionID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete report failed: %w", err)
	}
	return nil
}

func (c *ReportCache) MarkDirty(ctx context.Context, sessionID uint) error {
	key := c.dirtyKey(sessionID)
	if err := c.client.Set(ctx, key, "1", c.dirtyMarkerTTL).Err(); err != nil {
		return fmt.Errorf("redis set dirty marker failed: %w", err)
	}
	return nil
}

func (c *ReportCache) IsDirty(ctx context.Context, sessionID uint) (bool, error) {
	key := c.dirtyKey(sessionID)
	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	return exists > 0, nil
}

func (c *ReportCache) reportKey(sessionID uint) string {
	return fmt.Sprintf("report:session:%d", sessionID)
}

func (c *ReportCache) dirtyKey(sessionID uint) string {
	return fmt.Sprintf("report:session:dirty:%d", sessionID)
}
