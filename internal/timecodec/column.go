package timecodec

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Timestamp adapts an optional time value to a timestamp column. It binds as
// a statement argument (driver.Valuer) and scans from a result column
// (sql.Scanner). Set Shape (and optionally Codec) before scanning:
//
//	end := timecodec.Timestamp{Shape: timecodec.Offset}
//	err := row.Scan(&end)
type Timestamp struct {
	Time  time.Time
	Valid bool
	Shape Shape
	Codec Codec
}

// From wraps a present value.
func From(t time.Time) Timestamp {
	return Timestamp{Time: t, Valid: true}
}

// FromPtr wraps v; nil yields an absent Timestamp.
func FromPtr(v *time.Time) Timestamp {
	if v == nil {
		return Timestamp{}
	}
	return From(*v)
}

// Ptr returns the value, or nil when absent.
func (ts Timestamp) Ptr() *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

// Value implements driver.Valuer.
func (ts Timestamp) Value() (driver.Value, error) {
	nt := ts.Codec.ToStoreValue(ts.Ptr())
	if !nt.Valid {
		return nil, nil
	}
	return nt.Time, nil
}

// Scan implements sql.Scanner. Besides time.Time it accepts the text and
// integer (Unix milliseconds) renderings some drivers return for
// timestamp columns. The instant read is kept as is, exactly like
// Codec.FromStoreValue; precision is only reduced on write.
func (ts *Timestamp) Scan(src any) error {
	raw, err := toNullTime(src)
	if err != nil {
		return err
	}
	if !raw.Valid {
		ts.Time, ts.Valid = time.Time{}, false
		return nil
	}
	ts.Time = *ts.Codec.FromStoreValue(raw, ts.Shape)
	ts.Valid = true
	return nil
}

// textLayouts are the renderings of timestamp columns seen from SQL drivers,
// most specific first. Layouts without an offset are read as UTC, matching
// what ToStoreValue writes.
var textLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func toNullTime(src any) (sql.NullTime, error) {
	switch v := src.(type) {
	case nil:
		return sql.NullTime{}, nil
	case time.Time:
		return sql.NullTime{Time: v, Valid: true}, nil
	case int64:
		return sql.NullTime{Time: time.UnixMilli(v), Valid: true}, nil
	case []byte:
		return parseText(string(v))
	case string:
		return parseText(v)
	default:
		return sql.NullTime{}, fmt.Errorf("timecodec: cannot scan %T into Timestamp", src)
	}
}

func parseText(s string) (sql.NullTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range textLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return sql.NullTime{Time: t, Valid: true}, nil
		}
	}
	return sql.NullTime{}, fmt.Errorf("timecodec: unrecognized timestamp %q", s)
}
