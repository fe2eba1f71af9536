package osm

import (
	"testing"

	"github.com/paulmach/osm"
)

func TestIsCarAccessible(t *testing.T) {
	tests := []struct {
		name string
		tags osm.Tags
		want bool
	}{
		{
			name: "residential road",
			tags: osm.Tags{{Key: "highway", Value: "residential"}},
			want: true,
		},
		{
			name: "motorway",
			tags: osm.Tags{{Key: "highway", Value: "motorway"}},
			want: true,
		},
		{
			name: "footway (not car accessible)",
			tags: osm.Tags{{Key: "highway", Value: "footway"}},
			want: false,
		},
		{
			name: "cycleway",
			tags: osm.Tags{{Key: "highway", Value: "cycleway"}},
			want: false,
		},
		{
			name: "private access",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "access", Value: "private"},
			},
			want: false,
		},
		{
			name: "no access",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "access", Value: "no"},
			},
			want: false,
		},
		{
			name: "motor_vehicle=no",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "motor_vehicle", Value: "no"},
			},
			want: false,
		},
		{
			name: "area=yes (pedestrian plaza)",
			tags: osm.Tags{
				{Key: "highway", Value: "service"},
				{Key: "area", Value: "yes"},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isCarAccessible(tt.tags); got != tt.want {
				t.Errorf("isCarAccessible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDirectionFlags(t *testing.T) {
	tests := []struct {
		name    string
		tags    osm.Tags
		wantFwd bool
		wantBwd bool
	}{
		{
			name:    "default two-way",
			tags:    osm.Tags{{Key: "highway", Value: "residential"}},
			wantFwd: true, wantBwd: true,
		},
		{
			name: "explicit oneway",
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "yes"},
			},
			wantFwd: true, wantBwd: false,
		},
		{
			name: "reversed oneway",
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "-1"},
			},
			wantFwd: false, wantBwd: true,
		},
		{
			name:    "motorway implies oneway",
			tags:    osm.Tags{{Key: "highway", Value: "motorway"}},
			wantFwd: true, wantBwd: false,
		},
		{
			name: "roundabout implies oneway",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "junction", Value: "roundabout"},
			},
			wantFwd: true, wantBwd: false,
		},
		{
			name: "oneway=no on motorway overrides",
			tags: osm.Tags{
				{Key: "highway", Value: "motorway"},
				{Key: "oneway", Value: "no"},
			},
			wantFwd: true, wantBwd: true,
		},
		{
			name: "reversible skipped entirely",
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "reversible"},
			},
			wantFwd: false, wantBwd: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fwd, bwd := directionFlags(tt.tags)
			if fwd != tt.wantFwd || bwd != tt.wantBwd {
				t.Errorf("directionFlags() = (%v, %v), want (%v, %v)", fwd, bwd, tt.wantFwd, tt.wantBwd)
			}
		})
	}
}

func TestCarSpeedsOrdering(t *testing.T) {
	// Motorways must be the fastest class, living streets the slowest.
	for hw, speed := range carSpeedsKmh {
		if speed <= 0 {
			t.Errorf("speed for %q is %f", hw, speed)
		}
		if speed > carSpeedsKmh["motorway"] {
			t.Errorf("%q faster than motorway", hw)
		}
		if speed < carSpeedsKmh["living_street"] {
			t.Errorf("%q slower than living_street", hw)
		}
	}
}
