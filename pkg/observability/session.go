package observability

import (
	"context"
	"errors"
	"time"

	"github.com/platinummonkey/bookshelf/pkg/session"
)

// InstrumentedStore records Prometheus metrics around a session.TokenStore
type InstrumentedStore struct {
	next    session.TokenStore
	metrics *Metrics
}

var _ session.TokenStore = (*InstrumentedStore)(nil)

// InstrumentTokenStore wraps store so every call is counted and timed
func InstrumentTokenStore(store session.TokenStore, metrics *Metrics) *InstrumentedStore {
	return &InstrumentedStore{next: store, metrics: metrics}
}

func (s *InstrumentedStore) observe(operation string, start time.Time, err error) {
	status := "ok"
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	s.metrics.SessionOperationsTotal.WithLabelValues(operation, status).Inc()
	s.metrics.SessionOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (s *InstrumentedStore) Issue(ctx context.Context, userID int64) (session.Record, error) {
	start := time.Now()
	rec, err := s.next.Issue(ctx, userID)
	s.observe("issue", start, err)
	return rec, err
}

func (s *InstrumentedStore) LookupUser(ctx context.Context, token string) (int64, bool, error) {
	start := time.Now()
	userID, found, err := s.next.LookupUser(ctx, token)
	s.observe("lookup", start, err)
	return userID, found, err
}

func (s *InstrumentedStore) Refresh(ctx context.Context, userID int64, token string) (session.Record, error) {
	start := time.Now()
	rec, err := s.next.Refresh(ctx, userID, token)
	s.observe("refresh", start, err)
	return rec, err
}

func (s *InstrumentedStore) Revoke(ctx context.Context, userID int64, token string) error {
	start := time.Now()
	err := s.next.Revoke(ctx, userID, token)
	s.observe("revoke", start, err)
	if err == nil {
		s.metrics.SessionsRevokedTotal.Inc()
	}
	return err
}

func (s *InstrumentedStore) RevokeAllForUser(ctx context.Context, userID int64) (int, error) {
	start := time.Now()
	n, err := s.next.RevokeAllForUser(ctx, userID)
	s.observe("revoke_all", start, err)
	s.metrics.SessionsRevokedTotal.Add(float64(n))
	return n, err
}

func (s *InstrumentedStore) SweepExpired(ctx context.Context, userID int64) ([]string, error) {
	start := time.Now()
	removed, err := s.next.SweepExpired(ctx, userID)
	s.observe("sweep", start, err)
	s.metrics.SessionsSweptTotal.Add(float64(len(removed)))
	return removed, err
}

func (s *InstrumentedStore) Sessions(ctx context.Context, userID int64) ([]session.Record, error) {
	start := time.Now()
	records, err := s.next.Sessions(ctx, userID)
	s.observe("list", start, err)
	return records, err
}
