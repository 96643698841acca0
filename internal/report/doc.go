// Package report renders control cycles and scenario outcomes for the console.
package report
