package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ValeenMar/tovaltech-sub001/internal/dto"

	"github.com/redis/go-redis/v9"
)

const (
	LastReportKey    = "sync:last_report"
	ReportHistory    = "sync:reports"
	reportHistoryMax = 50
)

// ErrReportNotFound means no run has been recorded yet.
var ErrReportNotFound = errors.New("todavía no se ejecutó ninguna sincronización")

// ReportStore keeps sync reports.
type ReportStore interface {
	Save(ctx context.Context, r *dto.SyncReport) error
	Last(ctx context.Context) (*dto.SyncReport, error)
}

type redisReportStore struct{ rdb *redis.Client }

func NewRedisReportStore(rdb *redis.Client) ReportStore { return &redisReportStore{rdb: rdb} }

// Save stores r as the last report and prepends it to a capped history list.
func (s *redisReportStore) Save(ctx context.Context, r *dto.SyncReport) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, LastReportKey, data, 0)
	pipe.LPush(ctx, ReportHistory, data)
	pipe.LTrim(ctx, ReportHistory, 0, reportHistoryMax-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("report: store: %w", err)
	}
	return nil
}

func (s *redisReportStore) Last(ctx context.Context) (*dto.SyncReport, error) {
	data, err := s.rdb.Get(ctx, LastReportKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("report: load: %w", err)
	}
	var r dto.SyncReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("report: decode: %w", err)
	}
	return &r, nil
}
