package geocode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		in  string
		ok  bool
		lat float64
		lng float64
	}{
		{in: "12.97,77.59", ok: true, lat: 12.97, lng: 77.59},
		{in: " 12.97 , 77.59 ", ok: true, lat: 12.97, lng: 77.59},
		{in: "-33.86,151.2", ok: true, lat: -33.86, lng: 151.2},
		{in: "90,180", ok: true, lat: 90, lng: 180},
		{in: "91,10", ok: false},
		{in: "10,-181", ok: false},
		{in: "MG Road, Bengaluru", ok: false},
		{in: "12.97", ok: false},
		{in: "", ok: false},
		{in: "NaN,1", ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			p, ok := ParseCoordinates(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.lat, p.Lat, 1e-9)
				assert.InDelta(t, tc.lng, p.Lng, 1e-9)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "mg road bengaluru", Normalize("  MG   Road\tBengaluru "))
	assert.Equal(t, "", Normalize("   "))
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "in|indiranagar", CacheKey(" IN ", "Indiranagar "))
	assert.Equal(t, "|indiranagar", CacheKey("", "indiranagar"))
}
