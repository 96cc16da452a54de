package vm

import "fmt"

// ErrorCode is one of the stable, Markab-visible fault codes. These values
// are pushed onto the data stack by the error IRQ and are part of the wire
// contract with compiled Markab code, so they must never be renumbered.
type ErrorCode int32

const (
	ErrNone           ErrorCode = 0
	ErrDataOver       ErrorCode = 1
	ErrDataUnder      ErrorCode = 2
	ErrBadAddress     ErrorCode = 3
	ErrBootOverflow   ErrorCode = 4
	ErrBadInstruction ErrorCode = 5
	ErrROver          ErrorCode = 6
	ErrRUnder         ErrorCode = 7
	ErrMaxCycles      ErrorCode = 8
	ErrFilePerms      ErrorCode = 9 // alias ErrFilepath
	ErrFileNotFound   ErrorCode = 10
	ErrUnknownWord    ErrorCode = 11
	ErrNest           ErrorCode = 12
	ErrIOLoadDepth    ErrorCode = 13
	ErrBadPCAddr      ErrorCode = 14
	ErrIOLoadFail     ErrorCode = 15
)

// ErrFilepath is a documented alias for ErrFilePerms.
const ErrFilepath = ErrFilePerms

var errorNames = map[ErrorCode]string{
	ErrNone:           "NONE",
	ErrDataOver:       "DATA_OVER",
	ErrDataUnder:      "DATA_UNDER",
	ErrBadAddress:     "BAD_ADDRESS",
	ErrBootOverflow:   "BOOT_OVERFLOW",
	ErrBadInstruction: "BAD_INSTRUCTION",
	ErrROver:          "R_OVER",
	ErrRUnder:         "R_UNDER",
	ErrMaxCycles:      "MAX_CYCLES",
	ErrFilePerms:      "FILE_PERMS",
	ErrFileNotFound:   "FILE_NOT_FOUND",
	ErrUnknownWord:    "UNKNOWN_WORD",
	ErrNest:           "NEST",
	ErrIOLoadDepth:    "IOLOAD_DEPTH",
	ErrBadPCAddr:      "BAD_PC_ADDR",
	ErrIOLoadFail:     "IOLOAD_FAIL",
}

func (c ErrorCode) String() string {
	if name, ok := errorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ERR_%d", int32(c))
}

// Fault represents a vectored Markab error. It is never used as a Go panic;
// it is returned internally so the step loop can record it in ERR and jump
// to IRQERR, and surfaced to the host only for the two truly fatal,
// non-vectored conditions (BOOT_OVERFLOW pre-step and IRQERR unset).
type Fault struct {
	Code ErrorCode
	Msg  string
}

func (f *Fault) Error() string {
	if f.Msg != "" {
		return fmt.Sprintf("%s: %s", f.Code, f.Msg)
	}
	return f.Code.String()
}

func newFault(code ErrorCode, msg string) *Fault {
	return &Fault{Code: code, Msg: msg}
}
