// Package simulator runs the live closed-loop simulation and renders every
// cycle to the console.
package simulator
