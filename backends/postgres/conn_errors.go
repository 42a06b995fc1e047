package postgres

import "github.com/ajiwo/askailimiter/backends"

// connErrorStrings identify connectivity failures in pgx errors. Constraint
// violations and syntax errors are left out so they never trip failover.
var connErrorStrings = append([]string{
	"connection timeout",
	"pool exhausted",
	"too many connections",
	"terminating connection",
	"the database system is shutting down",
	"closed pool",
}, backends.ConnErrorPatterns...)
