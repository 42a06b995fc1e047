package etcd

import "github.com/ajiwo/askailimiter/backends"

var connErrorStrings = append([]string{
	"context deadline exceeded",
	"etcdserver: request timed out",
	"etcdserver: leader changed",
	"etcdserver: no leader",
	"grpc: the client connection is closing",
	"transport is closing",
	"unavailable",
}, backends.ConnErrorPatterns...)
