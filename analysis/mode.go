package analysis

import "ilopt/ilerrors"

// Mode selects how aggressively ldloca consumers are credited as writes
// (spec section 4.E). Out and Stackalloc are independent bits; Csharp is
// their union. All bypasses analysis entirely.
type Mode int

const (
	ModeNone       Mode = 0
	ModeOut        Mode = 1 << 0
	ModeStackalloc Mode = 1 << 1
	ModeAll        Mode = 1 << 2
)

const ModeCsharp = ModeOut | ModeStackalloc

// Has reports whether m carries flag (for Out/Stackalloc checks; not
// meaningful for All, which is handled as a standalone short-circuit).
func (m Mode) Has(flag Mode) bool { return m&flag != 0 }

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeOut:
		return "out"
	case ModeStackalloc:
		return "stackalloc"
	case ModeCsharp:
		return "csharp"
	case ModeAll:
		return "all"
	default:
		return "unknown"
	}
}

// ParseMode maps the CLI's optimization parameter string to a Mode. An
// empty string means none, matching section 6's "empty parameter means
// none mode".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "none":
		return ModeNone, nil
	case "out":
		return ModeOut, nil
	case "stackalloc":
		return ModeStackalloc, nil
	case "csharp":
		return ModeCsharp, nil
	case "all":
		return ModeAll, nil
	default:
		return 0, ilerrors.New(ilerrors.ArgumentError, "unknown striplocalsinit parameter %q", s)
	}
}
