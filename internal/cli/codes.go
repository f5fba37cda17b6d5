package cli

// Process exit codes. Scripts key off these, so every command maps its
// failures onto this set.
const (
	ExitOK       = 0
	ExitToolErr  = 1 // the tool ran and reported an error result
	ExitUsageErr = 2 // bad arguments or config the user can fix
	ExitInternal = 3 // everything else: transport, I/O, provider
)
