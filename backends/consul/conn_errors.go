package consul

import "github.com/ajiwo/askailimiter/backends"

var connErrorStrings = append([]string{
	"unexpected response code: 500",
	"unexpected response code: 503",
	"no cluster leader",
	"rpc error",
}, backends.ConnErrorPatterns...)
