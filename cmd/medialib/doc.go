// Package main hosts the medialib CLI entrypoint and command graph.
//
// The Cobra command tree maps terminal invocations onto the internal
// packages: regenerate drives a regeneration pass, media and conversions
// inspect the library, and config scaffolds configuration. Configuration,
// logging, the media store and disks are resolved lazily by the shared
// command context so each subcommand only pays for what it uses.
package main
