package ir

// Version constants stamped into dumps and build fingerprints.
const (
	// IRVersion is the layout version of the IR dump.
	IRVersion = "1"

	// CompilerVersion is the jsc release.
	CompilerVersion = "0.1.0"
)
