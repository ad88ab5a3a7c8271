package domain

import (
	"fmt"
	"strings"
	"time"
)

// CutoverHour is the local hour at which the editorial day rolls over.
// Quota accounting, digest selection and scheduled publishing all share this
// single boundary.
const CutoverHour = 5

// Region is a metropolitan coverage area, the partition key for articles and
// sources. Match hints (states, city substrings) drive region inference for
// user submissions.
type Region struct {
	ID     string   `yaml:"id"`
	Name   string   `yaml:"name"`
	TZ     string   `yaml:"tz"`
	Lat    float64  `yaml:"lat"`
	Lng    float64  `yaml:"lng"`
	States []string `yaml:"states"`
	Cities []string `yaml:"cities"`

	loc *time.Location
}

// Location returns the region's timezone, falling back to UTC when the
// registry was built without resolving it.
func (r Region) Location() *time.Location {
	if r.loc == nil {
		return time.UTC
	}
	return r.loc
}

// DayWindowStart returns the start of the region's current editorial day:
// the most recent 5 a.m. local. Before 5 a.m. the window starts at
// yesterday's 5 a.m.
func (r Region) DayWindowStart(now time.Time) time.Time {
	local := now.In(r.Location())
	start := time.Date(local.Year(), local.Month(), local.Day(), CutoverHour, 0, 0, 0, r.Location())
	if local.Before(start) {
		start = start.AddDate(0, 0, -1)
	}
	return start
}

// NextWindowStart returns the next 5 a.m. local boundary, used to schedule
// approved submissions that should not publish immediately.
func (r Region) NextWindowStart(now time.Time) time.Time {
	local := now.In(r.Location())
	next := time.Date(local.Year(), local.Month(), local.Day(), CutoverHour, 0, 0, 0, r.Location())
	if !local.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Registry is the single source of truth for region metadata. Every
// component that needs a timezone or region lookup consults it.
type Registry struct {
	byID      map[string]Region
	order     []string
	defaultID string
}

func NewRegistry(defaultID string, regions []Region) (*Registry, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("region registry: no regions configured")
	}

	byID := make(map[string]Region, len(regions))
	order := make([]string, 0, len(regions))
	for _, r := range regions {
		loc, err := time.LoadLocation(r.TZ)
		if err != nil {
			return nil, fmt.Errorf("region %s: invalid timezone %q: %w", r.ID, r.TZ, err)
		}
		r.loc = loc
		byID[r.ID] = r
		order = append(order, r.ID)
	}

	if defaultID == "" {
		defaultID = regions[0].ID
	}
	if _, ok := byID[defaultID]; !ok {
		return nil, fmt.Errorf("region registry: default region %q not configured", defaultID)
	}

	return &Registry{byID: byID, order: order, defaultID: defaultID}, nil
}

func (reg *Registry) Get(id string) (Region, bool) {
	r, ok := reg.byID[id]
	return r, ok
}

func (reg *Registry) Default() Region {
	return reg.byID[reg.defaultID]
}

func (reg *Registry) All() []Region {
	out := make([]Region, 0, len(reg.order))
	for _, id := range reg.order {
		out = append(out, reg.byID[id])
	}
	return out
}

// Infer maps a free-text city/state pair to a region using the registry's
// match hints, falling back to the default region when nothing matches.
func (reg *Registry) Infer(city, state string) Region {
	city = strings.ToLower(strings.TrimSpace(city))
	state = strings.ToLower(strings.TrimSpace(state))

	for _, id := range reg.order {
		r := reg.byID[id]
		for _, s := range r.States {
			if state == strings.ToLower(s) {
				return r
			}
		}
		for _, c := range r.Cities {
			if c != "" && strings.Contains(city, strings.ToLower(c)) {
				return r
			}
		}
	}
	return reg.Default()
}
