package plugin

// Result is the status returned to the host by the audio path.
type Result int32

// Result codes
const (
	ResultOK             Result = 0
	ResultFalse          Result = 1
	ResultInvalidArg     Result = 2
	ResultNotImplemented Result = 3
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultFalse:
		return "false"
	case ResultInvalidArg:
		return "invalid argument"
	case ResultNotImplemented:
		return "not implemented"
	}
	return "unknown"
}
