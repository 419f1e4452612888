// Package supervisor runs a Selenium server, and in hub mode a headless
// PhantomJS client registered with it, as child processes.
//
// A Supervisor spawns the children, watches their output through the
// readiness detector, reports when the grid is usable, and terminates the
// children on Stop or when the supervising process is interrupted. At most
// one start is in flight per Supervisor and at most one child exists per
// role.
package supervisor
