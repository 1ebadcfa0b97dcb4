package geometry

import (
	"math"
	"testing"
)

func TestDistNM(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tol                    float64
	}{
		{name: "zero distance", lat1: 51.47, lon1: -0.45, lat2: 51.47, lon2: -0.45, want: 0, tol: 0.001},
		{name: "heathrow to frankfurt", lat1: 51.4700, lon1: -0.4543, lat2: 50.0379, lon2: 8.5622, want: 355, tol: 10},
		{name: "one degree of latitude", lat1: 0, lon1: 0, lat2: 1, lon2: 0, want: 60, tol: 0.2},
		{name: "dateline crossing", lat1: 0, lon1: 179.5, lat2: 0, lon2: -179.5, want: 60, tol: 0.2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DistNM(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			if math.Abs(got-tc.want) > tc.tol {
				t.Fatalf("got %.2f nm, want %.2f +/- %.2f", got, tc.want, tc.tol)
			}
		})
	}
}
