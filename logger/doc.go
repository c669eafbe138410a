// Package logger provides structured logging for peertrack, built on zerolog.
//
// It wraps zerolog.Logger with component tagging and field helpers so that
// library packages can log consistently without depending on zerolog directly.
package logger
