// Package common holds helpers shared by the simulator and scenario services.
//
// It detects the operator (hostname/username) running a session so that every
// session log can be traced back to the workstation that produced it.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
