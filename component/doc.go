// Package component defines the lifecycle contract shared by peertrack's
// long-running pieces and a small registry that starts and stops them in
// dependency order.
package component
