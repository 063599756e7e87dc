// Package timecodec converts application time values to and from the store's
// timestamp column.
//
// The column carries an absolute instant with millisecond precision and
// nothing else. Writing discards the value's zone or offset; reading
// re-expresses the instant in the reading process's default zone. A value
// written at 10:15:30+00:00 and read by a process whose zone is UTC+2 comes
// back as 12:15:30+02:00: the same instant, a different rendering. This is
// intended and covered by tests; compare round-tripped values with
// time.Time.Equal, never with ==.
//
// Absent values are nil *time.Time on the application side and SQL NULL on
// the store side.
package timecodec
