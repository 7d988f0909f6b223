// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services depend on ports only; concrete adapters are wired in cmd/kbrag.
package services
