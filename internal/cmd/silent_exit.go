package cmd

// SilentExitError signals a specific process exit code without cobra
// printing an additional error line — used for the exit-code contract in
// spec section 6.7 (0 success, 1 unrecoverable failure, 2 invalid
// configuration, 3 budget exceeded), where the message has already been
// printed to stderr by the subcommand itself.
type SilentExitError struct {
	Code int
}

func (e *SilentExitError) Error() string { return "" }

// NewSilentExit constructs a SilentExitError carrying the given exit code.
func NewSilentExit(code int) error {
	return &SilentExitError{Code: code}
}

// IsSilentExit reports whether err is a SilentExitError and returns its code.
func IsSilentExit(err error) (int, bool) {
	se, ok := err.(*SilentExitError)
	if !ok {
		return 0, false
	}
	return se.Code, true
}

const (
	exitOK             = 0
	exitUnrecoverable  = 1
	exitInvalidConfig  = 2
	exitBudgetExceeded = 3
)
