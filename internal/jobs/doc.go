// Package jobs defines the upload job model and its monotonic state machine.
package jobs
