package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// StringArray is a custom type for handling TEXT[] arrays in PostgreSQL
type StringArray []string

// Value implements the driver.Valuer interface
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	return pq.Array(a).Value()
}

// Scan implements the sql.Scanner interface
func (a *StringArray) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	slice := (*[]string)(a)
	return pq.Array(slice).Scan(src)
}

// ============================================================================
// JSONB SCANNER/VALUER HELPERS
// ============================================================================

func jsonbValue(v interface{}) (driver.Value, error) {
	return json.Marshal(v)
}

func jsonbScan(value interface{}, dest interface{}, name string) error {
	if value == nil {
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("type assertion to []byte failed for %s", name)
	}
	return json.Unmarshal(bytes, dest)
}

// AdminAction is one immutable entry of an entity's admin audit trail
type AdminAction struct {
	Action    string    `json:"action"`
	AdminID   string    `json:"admin_id"`
	Notes     *string   `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AdminActionLog is the append-only admin audit trail stored as JSONB
type AdminActionLog []AdminAction

// Append adds an entry without touching earlier ones
func (l AdminActionLog) Append(entry AdminAction) AdminActionLog {
	out := make(AdminActionLog, len(l), len(l)+1)
	copy(out, l)
	return append(out, entry)
}

// Last returns the most recent entry
func (l AdminActionLog) Last() (AdminAction, bool) {
	if len(l) == 0 {
		return AdminAction{}, false
	}
	return l[len(l)-1], true
}

func (l AdminActionLog) Value() (driver.Value, error) {
	if l == nil {
		return jsonbValue([]AdminAction{})
	}
	return jsonbValue([]AdminAction(l))
}

func (l *AdminActionLog) Scan(value interface{}) error {
	return jsonbScan(value, l, "AdminActionLog")
}
