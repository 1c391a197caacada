package database

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
)

// QueryHook logs every statement bun executes and counts them. Failed
// statements are logged at Error, the rest at Debug.
type QueryHook struct {
	logger  logrus.FieldLogger
	queries atomic.Int64
}

var _ bun.QueryHook = (*QueryHook)(nil)

func NewQueryHook(logger logrus.FieldLogger) *QueryHook {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &QueryHook{logger: logger.WithField("component", "database")}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	h.queries.Add(1)

	entry := h.logger.WithFields(logrus.Fields{
		"operation": event.Operation(),
		"duration":  time.Since(event.StartTime),
		"query":     event.Query,
	})

	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		entry.WithError(event.Err).Error("query failed")
		return
	}
	entry.Debug("query")
}

// Queries returns the number of statements observed so far.
func (h *QueryHook) Queries() int64 {
	return h.queries.Load()
}

// Reset sets the statement counter back to zero.
func (h *QueryHook) Reset() {
	h.queries.Store(0)
}
