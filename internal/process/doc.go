// Package process groups child processes so a timed-out LaTeX run can be
// killed with everything it started.
package process
