package cli

// Mode is the operating mode selected for an invocation.
type Mode int

const (
	ModeDefaultRun Mode = iota
	ModeDelegate
	ModeHelp
	ModeVersion
	ModeCompile
)

func (m Mode) String() string {
	switch m {
	case ModeDelegate:
		return "delegate"
	case ModeHelp:
		return "help"
	case ModeVersion:
		return "version"
	case ModeCompile:
		return "compile"
	default:
		return "default-run"
	}
}

// Dispatch selects exactly one mode for p. The checks run in precedence
// order; anything not matched falls through to default-run rather than
// being rejected.
func Dispatch(p Program) Mode {
	if p.HasFlag(FlagUse) {
		return ModeDelegate
	}
	if len(p.Files) == 0 && len(p.Flags) == 1 {
		switch p.Flags[0] {
		case FlagHelp:
			return ModeHelp
		case FlagVersion:
			return ModeVersion
		}
	}
	if p.HasFlag(FlagCompile) {
		return ModeCompile
	}
	return ModeDefaultRun
}
