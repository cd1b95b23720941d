package gps

import (
	"math"
	"testing"
)

func TestDecodeGGA(t *testing.T) {
	tests := []struct {
		name     string
		sentence string
		want     Fix
	}{
		{
			name:     "munich",
			sentence: "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47",
			want:     Fix{Quality: GNSS, Latitude: 48.1173, Longitude: 11.516667},
		},
		{
			name:     "south west",
			sentence: "$GPGGA,123519,2655.000,S,13470.000,W,2,08,0.9,545.4,M,46.9,M,,*47",
			want:     Fix{Quality: DGNSS, Latitude: -26.916667, Longitude: -135.166667},
		},
		{
			name:     "no fix empty fields",
			sentence: "$GPGGA,104534.00,,,,,0,00,99.99,,,,,,*53",
			want:     Fix{Quality: NoFix},
		},
		{
			name:     "empty quality is no fix",
			sentence: "$GPGGA,104534.00,4807.038,N,01131.000,E,,00,,,M,,M,,*53",
			want:     Fix{Quality: NoFix, Latitude: 48.1173, Longitude: 11.516667},
		},
		{
			name:     "truncated sentence",
			sentence: "$GPGGA,104534.00",
			want:     Fix{},
		},
	}

	for _, tc := range tests {
		got := DecodeGGA(tc.sentence)
		if got.Quality != tc.want.Quality {
			t.Errorf("%s: quality = %v, want %v", tc.name, got.Quality, tc.want.Quality)
		}
		if math.Abs(got.Latitude-tc.want.Latitude) > 1e-4 {
			t.Errorf("%s: latitude = %f, want %f", tc.name, got.Latitude, tc.want.Latitude)
		}
		if math.Abs(got.Longitude-tc.want.Longitude) > 1e-4 {
			t.Errorf("%s: longitude = %f, want %f", tc.name, got.Longitude, tc.want.Longitude)
		}
	}
}

func TestQualityNeedsAssistance(t *testing.T) {
	for q := Quality(0); int(q) < NumQualities; q++ {
		want := q == NoFix || q == DeadReckoning
		if got := q.NeedsAssistance(); got != want {
			t.Errorf("%v.NeedsAssistance() = %v, want %v", q, got, want)
		}
	}
}

func TestQualityString(t *testing.T) {
	if NoFix.String() != "NOFIX" || DeadReckoning.String() != "DR" {
		t.Errorf("unexpected quality names: %v %v", NoFix, DeadReckoning)
	}
	if Quality(42).String() != "Q42" {
		t.Errorf("out of range quality: %v", Quality(42))
	}
}
