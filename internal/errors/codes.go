package errors

// Code represents an error code
type Code string

// Error codes
const (
	CodeOK              Code = "OK"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeAlreadyExists   Code = "ALREADY_EXISTS"
	CodeOutOfRange      Code = "OUT_OF_RANGE"
	CodeInternal        Code = "INTERNAL"
	CodeUnavailable     Code = "UNAVAILABLE"
	CodeDataLoss        Code = "DATA_LOSS"
)

// String returns the string representation of the code
func (c Code) String() string {
	return string(c)
}

// ExitCode maps a code to the process exit status used by the CLI.
// Input mistakes exit 2, corrupted tracker state 3, everything else 1.
func (c Code) ExitCode() int {
	switch c {
	case CodeOK:
		return 0
	case CodeInvalidArgument, CodeNotFound, CodeAlreadyExists, CodeOutOfRange:
		return 2
	case CodeDataLoss:
		return 3
	default:
		return 1
	}
}
