package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoordinatesValid(t *testing.T) {
	cases := []struct {
		name string
		c    Coordinates
		want bool
	}{
		{"paris", Coordinates{Latitude: 48.8584, Longitude: 2.2945}, true},
		{"origin", Coordinates{}, true},
		{"poles and antimeridian", Coordinates{Latitude: -90, Longitude: 180}, true},
		{"latitude too large", Coordinates{Latitude: 90.1, Longitude: 0}, false},
		{"longitude too small", Coordinates{Latitude: 0, Longitude: -180.5}, false},
		{"nan", Coordinates{Latitude: math.NaN(), Longitude: 0}, false},
		{"inf", Coordinates{Latitude: 0, Longitude: math.Inf(1)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.c.Valid())
		})
	}
}
