package scripts

import _ "embed"

// Lua scripts for the Redis backend, embedded at compile time

// CheckAndSetScript performs the versioned compare-and-swap on a counter hash.
//
//go:embed check_and_set.lua
var CheckAndSetScript string
