package logging

import (
	"fmt"

	"github.com/Graylog2/go-gelf/gelf"
)

// DialGraylog opens a UDP GELF writer to addr, e.g. "localhost:12201".
func DialGraylog(addr string) (*gelf.Writer, error) {
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to graylog at %s: %w", addr, err)
	}
	return w, nil
}
