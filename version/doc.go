// Package version reports the seqpipe build, set at link time:
//
//	go build -ldflags "-X github.com/kbukum/lazyseq/version.Version=1.2.0" ./cmd/seqpipe
//
// Unset fields fall back to the VCS stamp the Go toolchain embeds.
package version
