// Package subprocess spawns the grid's child processes.
//
// Launcher starts a child without binding its lifetime to any context,
// streams every line it writes to stdout and stderr through a callback, and
// returns a Process handle that reports exit status and accepts a graceful
// termination request. Spawn failures caused by an address already in use are
// reported as their own outcome so the supervisor can treat them as a server
// that is already running.
package subprocess
