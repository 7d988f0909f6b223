// Package memory provides in-memory implementations of driven ports.
// They back tests and runs where no persistent storage is configured.
package memory
