package receiver

import (
	"fmt"
	"os"
)

// capture tees everything read from the underlying link into a UBX
// log file. Writes pass through untouched.
type capture struct {
	Link
	file *os.File
}

// WithCapture wraps a link so that all receiver output is also
// appended to the given file.
func WithCapture(link Link, path string) (Link, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create capture file: %w", err)
	}
	return &capture{Link: link, file: f}, nil
}

func (c *capture) Read(p []byte) (int, error) {
	n, err := c.Link.Read(p)
	if n > 0 {
		if _, werr := c.file.Write(p[:n]); werr != nil {
			return n, werr
		}
	}
	return n, err
}

func (c *capture) Close() error {
	err := c.Link.Close()
	if cerr := c.file.Close(); err == nil {
		err = cerr
	}
	return err
}
