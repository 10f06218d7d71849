// Package tools provides host helpers shared by executor handlers.
//
// Ownership boundary:
// - command execution with captured stdout, stderr and exit code
package tools
