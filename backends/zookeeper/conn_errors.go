package zookeeper

import "github.com/ajiwo/askailimiter/backends"

var connErrorStrings = append([]string{
	"zk: connection closed",
	"zk: session has been expired",
	"zk: could not connect to a server",
	"zk: connection has been closed",
}, backends.ConnErrorPatterns...)
