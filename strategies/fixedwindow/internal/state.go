package internal

import (
	"strconv"
	"strings"
	"time"

	"github.com/ajiwo/askailimiter/utils/builderpool"
)

// TotalSuffix names the counter used when no window is configured.
const TotalSuffix = "total"

// Bucket returns floor(now / window) in whole seconds. It rounds toward
// negative infinity so that instants before the epoch still land in the
// bucket that contains them.
func Bucket(now time.Time, window time.Duration) int64 {
	sec := now.Unix()
	w := max(int64(window/time.Second), 1)
	q := sec / w
	if sec%w != 0 && sec < 0 {
		q--
	}
	return q
}

// WindowKey derives the counter key for now: "<prefix>:<bucket>", or
// "<prefix>:total" when window is zero.
func WindowKey(prefix string, now time.Time, window time.Duration) string {
	return builderpool.Build(func(sb *strings.Builder) {
		sb.WriteString(prefix)
		sb.WriteByte(':')
		if window <= 0 {
			sb.WriteString(TotalSuffix)
			return
		}
		sb.WriteString(strconv.FormatInt(Bucket(now, window), 10))
	})
}

// BucketEnd returns the instant the bucket containing now closes. It is
// the zero time for cumulative counters.
func BucketEnd(now time.Time, window time.Duration) time.Time {
	if window <= 0 {
		return time.Time{}
	}
	w := max(int64(window/time.Second), 1)
	return time.Unix((Bucket(now, window)+1)*w, 0)
}

// counterTTL is the expiry given to a counter written at now: the rest of
// its bucket plus one more window.
func counterTTL(now time.Time, window time.Duration) time.Duration {
	if window <= 0 {
		return 0
	}
	return BucketEnd(now, window).Sub(now) + window
}

// EncodeCount renders a count as decimal text.
func EncodeCount(n uint32) []byte {
	return strconv.AppendUint(nil, uint64(n), 10)
}

// DecodeCount parses a stored counter. Absent, non-numeric or out of range
// values read as zero.
func DecodeCount(raw []byte) uint32 {
	if len(raw) == 0 {
		return 0
	}
	n, err := strconv.ParseUint(string(raw), 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}
