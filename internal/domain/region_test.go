package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()

	reg, err := NewRegistry("slc", []Region{
		{
			ID: "slc", Name: "Salt Lake City", TZ: "America/Denver",
			States: []string{"UT", "Utah"},
			Cities: []string{"salt lake", "provo"},
		},
		{
			ID: "nyc", Name: "New York City", TZ: "America/New_York",
			States: []string{"NY", "New York"},
			Cities: []string{"new york", "brooklyn"},
		},
	})
	require.NoError(t, err)
	return reg
}

func TestDayWindowStart(t *testing.T) {
	reg := testRegistry(t)
	slc, ok := reg.Get("slc")
	require.True(t, ok)
	denver := slc.Location()

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "afternoon is same day",
			now:  time.Date(2026, 3, 10, 15, 0, 0, 0, denver),
			want: time.Date(2026, 3, 10, 5, 0, 0, 0, denver),
		},
		{
			name: "exactly at cutover is same day",
			now:  time.Date(2026, 3, 10, 5, 0, 0, 0, denver),
			want: time.Date(2026, 3, 10, 5, 0, 0, 0, denver),
		},
		{
			name: "before cutover rolls back to yesterday",
			now:  time.Date(2026, 3, 10, 4, 59, 0, 0, denver),
			want: time.Date(2026, 3, 9, 5, 0, 0, 0, denver),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slc.DayWindowStart(tt.now)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestDayWindowStart_UTCInput(t *testing.T) {
	reg := testRegistry(t)
	slc, _ := reg.Get("slc")

	// 2026-03-10 10:30 UTC is 03:30 in Denver (DST), so the window started
	// yesterday.
	now := time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC)
	got := slc.DayWindowStart(now)

	want := time.Date(2026, 3, 9, 5, 0, 0, 0, slc.Location())
	assert.True(t, got.Equal(want), "got %v, want %v", got, want)
}

func TestNextWindowStart(t *testing.T) {
	reg := testRegistry(t)
	nyc, _ := reg.Get("nyc")
	eastern := nyc.Location()

	afternoon := time.Date(2026, 3, 10, 16, 0, 0, 0, eastern)
	next := nyc.NextWindowStart(afternoon)
	assert.True(t, next.Equal(time.Date(2026, 3, 11, 5, 0, 0, 0, eastern)))

	earlyMorning := time.Date(2026, 3, 10, 3, 0, 0, 0, eastern)
	next = nyc.NextWindowStart(earlyMorning)
	assert.True(t, next.Equal(time.Date(2026, 3, 10, 5, 0, 0, 0, eastern)))
}

func TestRegistry_Infer(t *testing.T) {
	reg := testRegistry(t)

	tests := []struct {
		name  string
		city  string
		state string
		want  string
	}{
		{"state match", "anywhere", "NY", "nyc"},
		{"state match full name", "anywhere", "new york", "nyc"},
		{"city substring match", "Brooklyn Heights", "", "nyc"},
		{"city match beats default", "downtown provo", "", "slc"},
		{"no match falls back to default", "portland", "OR", "slc"},
		{"empty input falls back to default", "", "", "slc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reg.Infer(tt.city, tt.state)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestNewRegistry_Validation(t *testing.T) {
	_, err := NewRegistry("", nil)
	require.Error(t, err)

	_, err = NewRegistry("", []Region{{ID: "x", TZ: "Not/AZone"}})
	require.Error(t, err)

	_, err = NewRegistry("missing", []Region{{ID: "x", TZ: "UTC"}})
	require.Error(t, err)
}

func TestManuallyPinned(t *testing.T) {
	end := time.Now().Add(time.Hour)

	pinned := Article{IsFeatured: true}
	assert.True(t, pinned.ManuallyPinned())

	rotated := Article{IsFeatured: true, FeaturedEnd: &end}
	assert.False(t, rotated.ManuallyPinned())

	plain := Article{}
	assert.False(t, plain.ManuallyPinned())
}
