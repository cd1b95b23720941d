package nmea

import (
	"fmt"
	"regexp"
	"testing"
)

// frame builds a sentence with a valid checksum from the body between
// '$' and '*'.
func frame(body string) []byte {
	var sum byte
	for i := 0; i < len(body); i++ {
		sum ^= body[i]
	}
	return []byte(fmt.Sprintf("$%s*%02X\r\n", body, sum))
}

func collect(f *Framer) *[]string {
	var got []string
	f.handlers = []Handler{{
		Pattern: regexp.MustCompile(`^\$G[A-Z]GGA,`),
		Fn:      func(s string) { got = append(got, s) },
	}}
	return &got
}

func TestFeedDispatch(t *testing.T) {
	f := NewFramer(nil)
	got := collect(f)

	f.Feed(frame("GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,"))
	if len(*got) != 1 {
		t.Fatalf("expected 1 sentence, got %d", len(*got))
	}
	want := "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"
	if (*got)[0] != want {
		t.Errorf("got %q, want %q", (*got)[0], want)
	}
}

func TestFeedChecksum(t *testing.T) {
	tests := map[string]bool{
		"$GPGGA,1234,N*1C\r\n": true,  // valid
		"$GPGGA,1234,N*1D\r\n": false, // checksum mismatch
		"$GPGGA,1234,N*ZZ\r\n": false, // invalid hex never matches
		"$GPGGA,1234,N\r\n":    false, // no checksum marker
		"$GPGGA*00\r\n":        false, // mismatch on short frame
	}
	for in, want := range tests {
		f := NewFramer(nil)
		got := collect(f)
		f.Feed([]byte(in))
		if dispatched := len(*got) == 1; dispatched != want {
			t.Errorf("%q: dispatched=%v, want %v", in, dispatched, want)
		}
	}
}

func TestFeedSplitAcrossChunks(t *testing.T) {
	f := NewFramer(nil)
	got := collect(f)

	full := frame("GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,")
	for _, b := range full {
		f.Feed([]byte{b})
	}
	if len(*got) != 1 {
		t.Fatalf("expected 1 sentence from byte-wise feed, got %d", len(*got))
	}
}

func TestFeedInterleavedBinary(t *testing.T) {
	f := NewFramer(nil)
	got := collect(f)

	// UBX frame fragments before, between and after sentences
	var stream []byte
	stream = append(stream, 0xb5, 0x62, 0x01, 0x07, 0x00)
	stream = append(stream, frame("GPGGA,1234,N")...)
	stream = append(stream, 0xb5, 0x62, 0xff)
	stream = append(stream, frame("GNGGA,5678,S")...)
	stream = append(stream, 0x00, 0x00)
	f.Feed(stream)

	if len(*got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %v", len(*got), *got)
	}
}

func TestFeedAbortsOnBinaryInsideFrame(t *testing.T) {
	f := NewFramer(nil)
	got := collect(f)

	// binary byte in the middle of a candidate sentence kills it
	f.Feed([]byte("$GPGGA,12"))
	f.Feed([]byte{0xb5})
	f.Feed([]byte("34,N*00\r\n"))
	if len(*got) != 0 {
		t.Errorf("aborted frame was dispatched: %v", *got)
	}

	// and the framer recovers on the next '$'
	f.Feed(frame("GPGGA,1234,N"))
	if len(*got) != 1 {
		t.Errorf("expected recovery after aborted frame, got %d", len(*got))
	}
}

func TestFeedRestartsOnDollar(t *testing.T) {
	f := NewFramer(nil)
	got := collect(f)

	// unterminated frame is silently abandoned by the next '$'
	f.Feed([]byte("$GPGGA,99"))
	f.Feed(frame("GPGGA,1234,N"))
	if len(*got) != 1 {
		t.Fatalf("expected 1 sentence, got %d", len(*got))
	}
	if (*got)[0] != "$GPGGA,1234,N*1C" {
		t.Errorf("unexpected sentence %q", (*got)[0])
	}
}

func TestFeedFirstMatchOnly(t *testing.T) {
	var first, second int
	f := NewFramer([]Handler{
		{Pattern: regexp.MustCompile(`^\$G[A-Z]GGA,`), Fn: func(string) { first++ }},
		{Pattern: regexp.MustCompile(`^\$GP`), Fn: func(string) { second++ }},
	})
	f.Feed(frame("GPGGA,1234,N"))
	if first != 1 || second != 0 {
		t.Errorf("expected only the first matching handler, got first=%d second=%d", first, second)
	}

	// a sentence matching only the second pattern still reaches it
	f.Feed(frame("GPRMC,1234,A"))
	if second != 1 {
		t.Errorf("expected second handler for RMC, got %d", second)
	}
}

func TestFeedUnmatchedSentence(t *testing.T) {
	f := NewFramer(nil)
	got := collect(f)

	f.Feed(frame("GPVTG,054.7,T,034.4,M,005.5,N,010.2,K"))
	if len(*got) != 0 {
		t.Errorf("VTG should not match the GGA pattern: %v", *got)
	}
}
