// Package cli builds the cobra command tree. It translates flags and
// arguments into the application's internal configuration and handles
// process-level concerns like exit codes.
package cli
