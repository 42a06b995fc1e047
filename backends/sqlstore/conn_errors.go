package sqlstore

import "github.com/ajiwo/askailimiter/backends"

var connErrorStrings = append([]string{
	"database is locked",
	"too many connections",
	"invalid connection",
	"bad connection",
	"sql: database is closed",
}, backends.ConnErrorPatterns...)
