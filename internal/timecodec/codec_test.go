package timecodec_test

import (
	"database/sql"
	"testing"
	"time"
	_ "time/tzdata" // zone database independent of the host

	"github.com/phrazzld/handlescope/internal/timecodec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var plusTwo = time.FixedZone("UTC+2", 2*60*60)

func mustZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestToStoreValue(t *testing.T) {
	t.Run("absent_maps_to_null", func(t *testing.T) {
		assert.Equal(t, sql.NullTime{}, timecodec.ToStoreValue(nil))
	})

	t.Run("present_keeps_instant_drops_zone", func(t *testing.T) {
		v := time.Date(2015, 4, 1, 6, 0, 0, 0, time.FixedZone("", -5*60*60))

		got := timecodec.ToStoreValue(&v)

		require.True(t, got.Valid)
		assert.True(t, got.Time.Equal(v))
		assert.Equal(t, time.UTC, got.Time.Location())
		assert.Equal(t, 11, got.Time.Hour())
	})

	t.Run("truncates_below_millisecond", func(t *testing.T) {
		v := time.Date(2007, 12, 3, 10, 15, 30, 375_999_999, time.UTC)

		got := timecodec.ToStoreValue(&v)

		assert.Equal(t, 375_000_000, got.Time.Nanosecond())
	})
}

func TestFromStoreValueNull(t *testing.T) {
	for _, shape := range []timecodec.Shape{timecodec.Instant, timecodec.Offset, timecodec.Zoned} {
		t.Run(shape.String(), func(t *testing.T) {
			assert.Nil(t, timecodec.FromStoreValue(sql.NullTime{}, shape))
		})
	}
}

// A value written at +00:00 and read in a process whose default zone is
// UTC+2 keeps its instant and comes back at +02:00.
func TestRoundTripRenormalizesToReaderZone(t *testing.T) {
	written := time.Date(2007, 12, 3, 10, 15, 30, 375_000_000, time.UTC)
	reader := timecodec.New(plusTwo)

	raw := timecodec.New(time.UTC).ToStoreValue(&written)
	got := reader.FromStoreValue(raw, timecodec.Offset)

	require.NotNil(t, got)
	assert.True(t, got.Equal(written))
	_, offset := got.Zone()
	assert.Equal(t, 2*60*60, offset)
	assert.Equal(t, "2007-12-03T12:15:30.375+02:00", got.Format(time.RFC3339Nano))
}

func TestRoundTripPreservesInstantAcrossZones(t *testing.T) {
	zones := []string{"UTC", "America/Chicago", "Europe/Berlin", "Asia/Kathmandu", "Pacific/Chatham", "America/St_Johns"}
	shapes := []timecodec.Shape{timecodec.Instant, timecodec.Offset, timecodec.Zoned}
	base := time.Date(2015, 4, 1, 6, 0, 0, 123_456_789, time.UTC)

	for _, writerZone := range zones {
		for _, readerZone := range zones {
			for _, shape := range shapes {
				name := writerZone + "->" + readerZone + "/" + shape.String()
				t.Run(name, func(t *testing.T) {
					v := base.In(mustZone(t, writerZone))
					writer := timecodec.New(mustZone(t, writerZone))
					reader := timecodec.New(mustZone(t, readerZone))

					got := reader.FromStoreValue(writer.ToStoreValue(&v), shape)

					require.NotNil(t, got)
					assert.True(t, got.Equal(timecodec.Truncate(v)),
						"instant drifted: wrote %s, read %s", v, got)
				})
			}
		}
	}
}

func TestShapes(t *testing.T) {
	newYork := mustZone(t, "America/New_York")
	codec := timecodec.New(newYork)
	summer := time.Date(2020, 7, 1, 12, 0, 0, 0, time.UTC)
	winter := time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		instant    time.Time
		shape      timecodec.Shape
		wantOffset int
		wantLoc    *time.Location
	}{
		{name: "instant_is_utc", instant: summer, shape: timecodec.Instant, wantOffset: 0, wantLoc: time.UTC},
		{name: "zoned_summer", instant: summer, shape: timecodec.Zoned, wantOffset: -4 * 3600, wantLoc: newYork},
		{name: "zoned_winter", instant: winter, shape: timecodec.Zoned, wantOffset: -5 * 3600, wantLoc: newYork},
		{name: "offset_summer", instant: summer, shape: timecodec.Offset, wantOffset: -4 * 3600},
		{name: "offset_winter", instant: winter, shape: timecodec.Offset, wantOffset: -5 * 3600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := codec.FromStoreValue(sql.NullTime{Time: tt.instant, Valid: true}, tt.shape)

			require.NotNil(t, got)
			assert.True(t, got.Equal(tt.instant))
			_, offset := got.Zone()
			assert.Equal(t, tt.wantOffset, offset)
			if tt.wantLoc != nil {
				assert.Equal(t, tt.wantLoc, got.Location())
			}
		})
	}
}

func TestZeroCodecUsesLocal(t *testing.T) {
	assert.Equal(t, time.Local, timecodec.Codec{}.Location())
	assert.Equal(t, plusTwo, timecodec.New(plusTwo).Location())
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "instant", timecodec.Instant.String())
	assert.Equal(t, "Shape(9)", timecodec.Shape(9).String())
}
