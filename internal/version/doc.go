// Package version exposes build metadata of infusion-sim.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags. Short and Full render them for the CLI and the session logs.
package version
