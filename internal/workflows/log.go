package workflows

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/xaam-platform/envelope/internal/audit"
)

// LogOptions configures the log workflow.
type LogOptions struct {
	// Limit caps the number of entries returned. Zero means no limit.
	Limit int

	// Reverse returns the most recent entries first.
	Reverse bool

	// Operations filters by comma-separated operation names.
	Operations string
}

// LogResult contains the audit entries after filtering.
type LogResult struct {
	Entries []audit.Entry

	// TotalEntriesBeforeFilter is the number of entries in the log.
	TotalEntriesBeforeFilter int
}

// Log reads the audit log and applies the filters in opts.
func Log(ctx context.Context, opts LogOptions) (*LogResult, error) {
	entries, err := audit.ReadEntries()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &LogResult{TotalEntriesBeforeFilter: len(entries)}

	var ops []string
	for _, op := range strings.Split(opts.Operations, ",") {
		if op = strings.TrimSpace(op); op != "" {
			ops = append(ops, op)
		}
	}

	for _, e := range entries {
		if len(ops) > 0 && !slices.Contains(ops, e.Operation) {
			continue
		}
		result.Entries = append(result.Entries, e)
	}

	if opts.Reverse {
		slices.Reverse(result.Entries)
	}
	if opts.Limit > 0 && len(result.Entries) > opts.Limit {
		if opts.Reverse {
			result.Entries = result.Entries[:opts.Limit]
		} else {
			result.Entries = result.Entries[len(result.Entries)-opts.Limit:]
		}
	}

	return result, nil
}

// FormatDateTime renders an entry timestamp as "2006-01-02 15:04:05".
func FormatDateTime(ts string) string {
	t, err := time.Parse("2006-01-02T15:04:05.000000Z", ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

// FormatDetails summarizes the operation-specific fields of e.
func FormatDetails(e audit.Entry) string {
	var parts []string
	if len(e.Files) > 0 {
		parts = append(parts, strings.Join(e.Files, ", "))
	}
	if len(e.Recipients) > 0 {
		parts = append(parts, "recipients: "+strings.Join(e.Recipients, ", "))
	}
	return strings.Join(parts, "  ")
}
