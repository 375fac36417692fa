package core

// Version is overridden at build time with -ldflags "-X github.com/ivanzzeth/chainsim/core.Version=...".
var Version = "v0.1.0"
