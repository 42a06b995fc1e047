package fixedwindow

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const maxWindowSeconds = math.MaxInt64 / int64(time.Second)

// ParseConfig merges comma separated key=value pairs onto base.
//
// Recognized keys are limit, window and period (a synonym for window, in
// seconds). Numbers may carry a single leading '+'. Unknown keys and values that do not parse are skipped, as are
// a zero window and windows too long to represent. Later pairs win. It
// never fails; empty text returns base.
func ParseConfig(text string, base Config) Config {
	cfg := base
	for part := range strings.SplitSeq(text, ",") {
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)

		switch key {
		case "limit":
			if n, err := parseUnsigned(val, 32); err == nil {
				cfg.Limit = uint32(n)
			}
		case "window", "period":
			n, err := parseUnsigned(val, 64)
			if err != nil || n == 0 || n > uint64(maxWindowSeconds) {
				continue
			}
			cfg.Window = time.Duration(n) * time.Second
		}
	}
	return cfg
}

// parseUnsigned reads a decimal number with at most one leading '+'.
func parseUnsigned(s string, bitSize int) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, bitSize)
}

// ParseConfigBytes is ParseConfig for a raw configuration buffer. Bytes that
// are not valid UTF-8 leave base unchanged.
func ParseConfigBytes(raw []byte, base Config) Config {
	if !utf8.Valid(raw) {
		return base
	}
	return ParseConfig(string(raw), base)
}
