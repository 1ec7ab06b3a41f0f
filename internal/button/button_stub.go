//go:build !linux || (!arm && !arm64)

package button

import (
	"fmt"
	"time"
)

func Open(lineName string, debounce time.Duration) (*Button, error) {
	return nil, fmt.Errorf("button: gpio unsupported on this platform")
}
