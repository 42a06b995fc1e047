package redis

import "github.com/ajiwo/askailimiter/backends"

// connErrorStrings identify connectivity failures in go-redis errors. Operational
// replies such as NOSCRIPT or WRONGTYPE are not listed and never trip failover.
var connErrorStrings = append([]string{
	"connection timeout",
	"timeout",
	"connection pool exhausted",
	"pool timeout",
	"redis: client is closed",
}, backends.ConnErrorPatterns...)
