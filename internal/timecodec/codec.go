package timecodec

import (
	"database/sql"
	"fmt"
	"time"
)

// Precision is the granularity of the store's timestamp column.
const Precision = time.Millisecond

// Shape selects how an instant read from the store is qualified.
type Shape int

const (
	// Instant yields the bare instant, rendered in UTC.
	Instant Shape = iota
	// Offset yields the instant at the fixed UTC offset the default zone
	// has at that instant.
	Offset
	// Zoned yields the instant in the default zone itself, with its
	// daylight-saving rules.
	Zoned
)

// String implements fmt.Stringer.
func (s Shape) String() string {
	switch s {
	case Instant:
		return "instant"
	case Offset:
		return "offset"
	case Zoned:
		return "zoned"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Codec converts between application time values and store timestamps.
// The zero Codec reads values back in time.Local, looked up at call time.
type Codec struct {
	loc *time.Location
}

// New returns a Codec that treats loc as the reading process's default zone.
// A nil loc means time.Local.
func New(loc *time.Location) Codec {
	return Codec{loc: loc}
}

// Location returns the zone values are re-expressed in when read.
func (c Codec) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// ToStoreValue maps an absent value to NULL and a present value to its
// instant in UTC truncated to Precision. Zone and offset are discarded.
func (c Codec) ToStoreValue(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: Truncate(*v), Valid: true}
}

// FromStoreValue maps NULL to nil and otherwise qualifies the stored instant
// according to shape. The instant itself is returned unchanged.
func (c Codec) FromStoreValue(raw sql.NullTime, shape Shape) *time.Time {
	if !raw.Valid {
		return nil
	}
	t := c.Qualify(raw.Time, shape)
	return &t
}

// Qualify re-expresses the instant t according to shape. Only the
// rendering changes; t.Equal(c.Qualify(t, s)) always holds.
func (c Codec) Qualify(t time.Time, shape Shape) time.Time {
	switch shape {
	case Zoned:
		return t.In(c.Location())
	case Offset:
		_, offset := t.In(c.Location()).Zone()
		return t.In(time.FixedZone("", offset))
	default:
		return t.UTC()
	}
}

// Truncate drops everything below Precision and normalizes to UTC.
func Truncate(t time.Time) time.Time {
	return t.UTC().Truncate(Precision)
}

// ToStoreValue converts v using the process default zone.
func ToStoreValue(v *time.Time) sql.NullTime {
	return Codec{}.ToStoreValue(v)
}

// FromStoreValue converts raw using the process default zone.
func FromStoreValue(raw sql.NullTime, shape Shape) *time.Time {
	return Codec{}.FromStoreValue(raw, shape)
}
