// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger writing a console encoding to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - key-value convenience functions (DebugKV, InfoKV, WarnKV, ErrorKV).
//
// Stdout stays reserved for the cycle report, so diagnostics never interleave
// with rendered output.
package logger
