// Package detector classifies child process output into readiness signals.
//
// Neither the Selenium server nor PhantomJS exposes a readiness protocol; the
// only observable signal is free-form log text. This package holds every
// substring the supervisor relies on so that the matching, which is fragile
// against version drift in the wrapped tools, can be read and tested in one
// place:
//
//	res := detector.Classify(line, config.RoleServer, config.ModeHub)
//	switch res.Kind {
//	case detector.Ready:
//	    // spawn the client
//	case detector.Fatal:
//	    // fail the start with res.Message
//	}
//
// Classify is a pure function of its arguments. Whether a role has already
// become ready is tracked by the caller.
package detector
