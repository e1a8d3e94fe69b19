package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	baseline "highxofy/internal/baseline/domain"
)

// ResultRepository is an in-memory result store for demo/testing.
// Saving a timestamp twice for a subject replaces the earlier row.
type ResultRepository struct {
	mu   sync.RWMutex
	data map[string]map[time.Time]baseline.ResultRecord
}

// NewResultRepository constructs a repository.
func NewResultRepository() *ResultRepository {
	return &ResultRepository{data: make(map[string]map[time.Time]baseline.ResultRecord)}
}

// SaveResults upserts results for a subject.
func (r *ResultRepository) SaveResults(ctx context.Context, subjectID string, results []baseline.ResultRecord) error {
	_ = ctx
	if subjectID == "" {
		return baseline.ErrEmptySubjectID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	rows := r.data[subjectID]
	if rows == nil {
		rows = make(map[time.Time]baseline.ResultRecord, len(results))
		r.data[subjectID] = rows
	}
	for _, result := range results {
		rows[result.Timestamp.UTC()] = result
	}
	return nil
}

// ListResults returns matching results ordered by timestamp.
func (r *ResultRepository) ListResults(ctx context.Context, subjectID string, query baseline.ResultQuery) ([]baseline.ResultRecord, error) {
	_ = ctx
	if subjectID == "" {
		return nil, baseline.ErrEmptySubjectID
	}

	r.mu.RLock()
	rows := r.data[subjectID]
	result := make([]baseline.ResultRecord, 0, len(rows))
	for _, row := range rows {
		if query.Matches(row) {
			result = append(result, row)
		}
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp.Before(result[j].Timestamp) })
	if query.Limit > 0 && len(result) > query.Limit {
		result = result[:query.Limit]
	}
	return result, nil
}
