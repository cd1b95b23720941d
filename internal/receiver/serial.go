// Package receiver provides the byte link to the GNSS receiver: a
// blocking chunk reader for the NMEA/UBX output stream and a writer
// for correction payloads.
package receiver

import (
	"fmt"
	"io"

	serial "github.com/jacobsa/go-serial/serial"
)

// Link is a bidirectional receiver connection. Read blocks until at
// least one byte is available or the link is closed.
type Link interface {
	io.ReadWriteCloser
}

// OpenSerial opens the receiver's serial port, e.g. /dev/ttyACM0 at
// 38400 baud.
func OpenSerial(port string, baud uint) (Link, error) {
	opts := serial.OpenOptions{
		PortName:              port,
		BaudRate:              baud,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	p, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", port, err)
	}
	return p, nil
}
