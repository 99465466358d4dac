// Package proc provides functions for launching and manipulating
// a traced process during the debug session.
package proc
