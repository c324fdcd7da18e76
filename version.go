// Package riskbox is a push-your-luck game built on an actor-based
// hierarchical state machine runtime. The runtime lives in internal/core, the
// game machines in internal/game, and the command line in cmd/riskbox.
package riskbox

// Version is the release of this module.
const Version = "0.1.0"
