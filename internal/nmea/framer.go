// Package nmea extracts checksummed NMEA sentences from a raw receiver
// byte stream. The stream also carries UBX, RTCM and SPARTN frames; the
// framer ignores anything that does not look like a valid sentence.
package nmea

import (
	"log"
	"regexp"
	"strconv"
)

// Handler pairs a sentence pattern with the function to invoke on a
// matching, checksum-valid sentence. The sentence is passed with the
// leading '$' and without the terminating CR/LF.
type Handler struct {
	Pattern *regexp.Regexp
	Fn      func(sentence string)
}

// Framer accumulates one candidate sentence at a time from arbitrary
// byte chunks. Handlers are tried in registration order; only the first
// match is invoked per sentence.
type Framer struct {
	handlers []Handler
	buf      []byte // in-progress sentence, nil when not inside one
}

func NewFramer(handlers []Handler) *Framer {
	return &Framer{handlers: handlers}
}

// Feed consumes a chunk of receiver bytes. Partial or malformed
// sentences are dropped silently; checksum mismatches are logged.
func (f *Framer) Feed(data []byte) {
	for _, b := range data {
		switch {
		case b == '$':
			f.buf = append(f.buf[:0], b)
		case f.buf == nil:
			// between sentences, ignore
		case sentenceByte(b):
			f.buf = append(f.buf, b)
		case b == '\r':
			f.terminate()
		default:
			// binary protocol byte inside a candidate sentence
			f.buf = nil
		}
	}
}

func sentenceByte(b byte) bool {
	return b >= 'A' && b <= 'Z' ||
		b >= '0' && b <= '9' ||
		b == ',' || b == '.' || b == '-' || b == '*'
}

func (f *Framer) terminate() {
	buf := f.buf
	f.buf = nil
	if len(buf) <= 3 || buf[len(buf)-3] != '*' {
		return
	}
	received, err := strconv.ParseUint(string(buf[len(buf)-2:]), 16, 8)
	if err != nil {
		received = 0x100 // never matches a single XOR byte
	}
	var sum byte
	for _, b := range buf[1 : len(buf)-3] {
		sum ^= b
	}
	if uint64(sum) != received {
		log.Printf("chksum error: %02x != %02x", received, sum)
		return
	}
	sentence := string(buf)
	for _, h := range f.handlers {
		if h.Pattern.MatchString(sentence) {
			h.Fn(sentence)
			return
		}
	}
}
