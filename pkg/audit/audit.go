// Package audit provides the append-only record of security-relevant events.
//
// Entries live in the vault database next to the data they describe. Writes
// are best-effort from the caller's point of view: a failed audit write must
// never abort the operation it documents.
package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Actions recorded in the audit log.
const (
	// Auth lifecycle
	ActionSetup          = "vault.setup"
	ActionLoginSuccess   = "auth.login"
	ActionLoginFailed    = "auth.login_failed"
	ActionLockout        = "auth.lockout"
	ActionRecoveryReset  = "auth.recovery_reset"
	ActionRecoveryFailed = "auth.recovery_failed"

	// Account operations
	ActionAccountAdded   = "account.add"
	ActionAccountUpdated = "account.update"
	ActionAccountDeleted = "account.delete"

	// Transfer boundary
	ActionExport = "vault.export"
	ActionImport = "vault.import"
)

// DefaultListLimit caps how many entries List returns when the caller does
// not ask for a specific count.
const DefaultListLimit = 50

// Entry is a single audit log record.
type Entry struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger appends to and reads from the audit_logs table.
type Logger struct {
	db *sql.DB
}

// NewLogger creates an audit logger over the vault database handle.
func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db}
}

// Record appends an event. The returned error is informational; callers are
// expected to swallow it so auditing never blocks the primary operation.
func (l *Logger) Record(action, details string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := l.db.Exec(
		"INSERT INTO audit_logs (action, details, timestamp) VALUES (?, ?, ?)",
		action, details, timestamp,
	)
	if err != nil {
		return fmt.Errorf("audit: failed to record event: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first. A non-positive limit
// applies DefaultListLimit.
func (l *Logger) List(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := l.db.Query(`
		SELECT id, action, details, timestamp
		FROM audit_logs
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var details sql.NullString
		var ts string
		if err := rows.Scan(&e.ID, &e.Action, &details, &ts); err != nil {
			return nil, fmt.Errorf("audit: failed to scan row: %w", err)
		}
		e.Details = details.String
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			// Leave zero timestamp rather than dropping the record
			parsed = time.Time{}
		}
		e.Timestamp = parsed
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: error iterating rows: %w", err)
	}

	return entries, nil
}

// Export renders the most recent entries in the given format ("json" or
// "csv"), newest first.
func (l *Logger) Export(format string, limit int) ([]byte, error) {
	entries, err := l.List(limit)
	if err != nil {
		return nil, err
	}

	switch format {
	case "json":
		return json.MarshalIndent(entries, "", "  ")
	case "csv":
		return formatCSV(entries), nil
	default:
		return nil, fmt.Errorf("audit: unsupported format: %s", format)
	}
}

// formatCSV formats entries as CSV with injection-safe escaping.
func formatCSV(entries []Entry) []byte {
	var out []byte
	out = append(out, []byte("timestamp,action,details\n")...)
	for _, e := range entries {
		line := fmt.Sprintf("%s,%s,%s\n",
			csvEscape(e.Timestamp.UTC().Format(time.RFC3339)),
			csvEscape(e.Action),
			csvEscape(e.Details),
		)
		out = append(out, []byte(line)...)
	}
	return out
}

// csvEscape escapes a field for CSV output to prevent injection attacks.
func csvEscape(field string) string {
	if field == "" {
		return field
	}

	// Quote fields starting with =, +, -, @ to prevent formula injection
	needsQuoting := false
	firstChar := field[0]
	if firstChar == '=' || firstChar == '+' || firstChar == '-' || firstChar == '@' {
		needsQuoting = true
	}

	if !needsQuoting {
		for _, c := range field {
			if c == ',' || c == '"' || c == '\n' || c == '\r' {
				needsQuoting = true
				break
			}
		}
	}

	if !needsQuoting {
		return field
	}

	var escaped []byte
	escaped = append(escaped, '"')
	for _, c := range field {
		if c == '"' {
			escaped = append(escaped, '"', '"')
		} else {
			escaped = append(escaped, []byte(string(c))...)
		}
	}
	escaped = append(escaped, '"')
	return string(escaped)
}
