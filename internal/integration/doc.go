// Package integration holds cross-package tests of the closed loop: configuration
// files, the controller, the patient model, and the safety monitor running together.
package integration
