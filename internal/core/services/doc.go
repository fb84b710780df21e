// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services never import adapters; collaborators are injected by the
// composition root in cmd/studyrag.
package services
