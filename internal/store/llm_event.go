package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo with ent's SQL builders over either
// dialect.
type eventRepo struct {
	drv     *entsql.Driver
	dialect string
	now     func() time.Time
}

func newEventRepo(drv *entsql.Driver, dialect string) *eventRepo {
	return &eventRepo{drv: drv, dialect: dialect, now: time.Now}
}

var eventColumns = []string{
	"id", "created_at", "session_id", "provider", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "success",
	"error_message", "request_body", "response_body",
}

// eventRow mirrors the table for entsql.ScanSlice.
type eventRow struct {
	ID           int64  `sql:"id"`
	CreatedAt    int64  `sql:"created_at"`
	SessionID    string `sql:"session_id"`
	Provider     string `sql:"provider"`
	Model        string `sql:"model"`
	Purpose      string `sql:"purpose"`
	InputTokens  int64  `sql:"input_tokens"`
	OutputTokens int64  `sql:"output_tokens"`
	LatencyMs    int64  `sql:"latency_ms"`
	Success      bool   `sql:"success"`
	ErrorMessage string `sql:"error_message"`
	RequestBody  string `sql:"request_body"`
	ResponseBody string `sql:"response_body"`
}

func (r eventRow) event() LLMRequestEvent {
	return LLMRequestEvent{
		ID:        r.ID,
		CreatedAt: time.UnixMilli(r.CreatedAt),
		LLMRequestEventData: LLMRequestEventData{
			SessionID:    r.SessionID,
			Provider:     r.Provider,
			Model:        r.Model,
			Purpose:      r.Purpose,
			InputTokens:  int(r.InputTokens),
			OutputTokens: int(r.OutputTokens),
			LatencyMs:    r.LatencyMs,
			Success:      r.Success,
			ErrorMessage: r.ErrorMessage,
			RequestBody:  r.RequestBody,
			ResponseBody: r.ResponseBody,
		},
	}
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	query, args := entsql.Dialect(r.dialect).
		Insert(llmEventsTable).
		Columns(eventColumns[1:]...).
		Values(
			r.now().UnixMilli(), data.SessionID, data.Provider, data.Model, data.Purpose,
			data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success,
			data.ErrorMessage, data.RequestBody, data.ResponseBody,
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	sel := entsql.Dialect(r.dialect).
		Select(eventColumns...).
		From(entsql.Table(llmEventsTable)).
		OrderBy(entsql.Desc("id"))

	var preds []*entsql.Predicate
	if opts.Purpose != "" {
		preds = append(preds, entsql.EQ("purpose", opts.Purpose))
	}
	if opts.SessionID != "" {
		preds = append(preds, entsql.EQ("session_id", opts.SessionID))
	}
	if !opts.Since.IsZero() {
		preds = append(preds, entsql.GTE("created_at", opts.Since.UnixMilli()))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	rows, err := r.scan(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	events := make([]LLMRequestEvent, len(rows))
	for i, row := range rows {
		events[i] = row.event()
	}
	return events, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int64) (*LLMRequestEvent, error) {
	sel := entsql.Dialect(r.dialect).
		Select(eventColumns...).
		From(entsql.Table(llmEventsTable)).
		Where(entsql.EQ("id", id))

	rows, err := r.scan(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("LLM event %d: %w", id, ErrNotFound)
	}
	ev := rows[0].event()
	return &ev, nil
}

func (r *eventRepo) scan(ctx context.Context, sel *entsql.Selector) ([]eventRow, error) {
	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []eventRow
	if err := entsql.ScanSlice(rows, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]UsageRow, error) {
	return r.usageBy(ctx, "purpose")
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]UsageRow, error) {
	return r.usageBy(ctx, "model")
}

type usageScan struct {
	Key          string  `sql:"key"`
	Requests     int64   `sql:"requests"`
	Failures     int64   `sql:"failures"`
	InputTokens  int64   `sql:"input_tokens"`
	OutputTokens int64   `sql:"output_tokens"`
	AvgLatency   float64 `sql:"avg_latency"`
}

func (r *eventRepo) usageBy(ctx context.Context, column string) ([]UsageRow, error) {
	failures := "SUM(CASE WHEN success THEN 0 ELSE 1 END)"
	sel := entsql.Dialect(r.dialect).
		Select(
			entsql.As(column, "key"),
			entsql.As(entsql.Count("*"), "requests"),
			entsql.As(failures, "failures"),
			entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
			entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
			entsql.As(entsql.Avg("latency_ms"), "avg_latency"),
		).
		From(entsql.Table(llmEventsTable)).
		GroupBy(column).
		OrderBy(entsql.Desc("requests"), column)

	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("usage by %s: %w", column, err)
	}
	defer rows.Close()

	var scanned []usageScan
	if err := entsql.ScanSlice(rows, &scanned); err != nil {
		return nil, fmt.Errorf("usage by %s: %w", column, err)
	}
	out := make([]UsageRow, len(scanned))
	for i, s := range scanned {
		out[i] = UsageRow{
			Key:          s.Key,
			Requests:     int(s.Requests),
			Failures:     int(s.Failures),
			InputTokens:  s.InputTokens,
			OutputTokens: s.OutputTokens,
			AvgLatencyMs: s.AvgLatency,
		}
	}
	return out, nil
}

func (r *eventRepo) PruneLLMEvents(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args := entsql.Dialect(r.dialect).
		Delete(llmEventsTable).
		Where(entsql.LT("created_at", cutoff.UnixMilli())).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, fmt.Errorf("prune LLM events: %w", err)
	}
	return res.RowsAffected()
}
