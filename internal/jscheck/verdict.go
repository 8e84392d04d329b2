package jscheck

import "fmt"

// Verdict classifies what happened to a program.
type Verdict uint8

const (
	VerdictOK          Verdict = iota
	VerdictSyntaxError         // rejected by the parser or compiler
	VerdictException           // threw at runtime; expected for random programs
	VerdictTimeout             // interrupted after the time budget
	VerdictCrash               // the engine panicked
)

func (v Verdict) String() string {
	switch v {
	case VerdictOK:
		return "ok"
	case VerdictSyntaxError:
		return "syntax-error"
	case VerdictException:
		return "exception"
	case VerdictTimeout:
		return "timeout"
	case VerdictCrash:
		return "crash"
	default:
		return "unknown"
	}
}

// ParseVerdict converts the String form back.
func ParseVerdict(s string) (Verdict, error) {
	for v := VerdictOK; v <= VerdictCrash; v++ {
		if v.String() == s {
			return v, nil
		}
	}
	return VerdictOK, fmt.Errorf("unknown verdict %q", s)
}

// Finding reports whether the verdict points at a bug worth keeping:
// the generator emitted invalid syntax or the engine crashed.
func (v Verdict) Finding() bool {
	return v == VerdictSyntaxError || v == VerdictCrash
}
