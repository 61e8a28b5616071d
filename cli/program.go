// Package cli implements the bytenode command line: token canonicalization,
// mode dispatch, and the compile paths.
package cli

import "strings"

// StdinSentinel is the bare token that requests source from standard input.
const StdinSentinel = "-"

// Canonical long flags.
const (
	FlagHelp     = "--help"
	FlagVersion  = "--version"
	FlagCompile  = "--compile"
	FlagNoModule = "--no-module"
	FlagLoader   = "--loader"
	FlagOutput   = "--output"
	FlagUse      = "--use"
	FlagFilename = "--filename"
)

var shortFlags = map[string]string{
	"-h": FlagHelp,
	"-v": FlagVersion,
	"-c": FlagCompile,
	"-n": FlagNoModule,
	"-l": FlagLoader,
}

// Program is the canonical view of one invocation. It is built once by
// NewProgram and passed by value; WithoutFile returns a modified copy.
type Program struct {
	SelfPath string
	Runtime  string
	// Raw holds the tokens exactly as given.
	Raw   []string
	Args  []string
	Flags []string
	Files []string
	Stdin bool
}

// Canonicalize expands every recognized short flag to its long form.
// Order and length are preserved, so running it twice is a no-op.
func Canonicalize(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		if long, ok := shortFlags[arg]; ok {
			out[i] = long
			continue
		}
		out[i] = arg
	}
	return out
}

// NewProgram canonicalizes args and classifies each token.
func NewProgram(selfPath, runtime string, args []string) Program {
	p := Program{
		SelfPath: selfPath,
		Runtime:  runtime,
		Raw:      append([]string(nil), args...),
		Args:     Canonicalize(args),
	}
	for _, arg := range p.Args {
		switch {
		case arg == StdinSentinel:
			p.Stdin = true
		case strings.HasPrefix(arg, "-"):
			p.Flags = append(p.Flags, arg)
		case isFileLike(arg):
			p.Files = append(p.Files, arg)
		}
	}
	return p
}

// isFileLike reports whether a token that does not start with a dash can be
// an input path: its second character must not be a dash either.
func isFileLike(arg string) bool {
	return len(arg) < 2 || arg[1] != '-'
}

// HasFlag reports whether flag is present in the flag set.
func (p Program) HasFlag(flag string) bool {
	for _, f := range p.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// ArgAfter returns the token following the first occurrence of flag.
// The second return is false when flag is absent, is the last token, or is
// followed by another flag.
func (p Program) ArgAfter(flag string) (string, bool) {
	i := indexOf(p.Args, flag)
	if i < 0 || i+1 >= len(p.Args) {
		return "", false
	}
	next := p.Args[i+1]
	if next == "" || strings.HasPrefix(next, "-") {
		return "", false
	}
	return next, true
}

// WithoutFile returns a copy of p with the first occurrence of name removed
// from Files. Args is left untouched.
func (p Program) WithoutFile(name string) Program {
	i := indexOf(p.Files, name)
	if i < 0 {
		return p
	}
	files := make([]string, 0, len(p.Files)-1)
	files = append(files, p.Files[:i]...)
	files = append(files, p.Files[i+1:]...)
	p.Files = files
	return p
}

// WithoutFlagArg returns the tokens of p with flag and the token after it
// removed.
func (p Program) WithoutFlagArg(flag string) []string {
	i := indexOf(p.Args, flag)
	if i < 0 {
		return append([]string(nil), p.Args...)
	}
	end := i + 2
	if end > len(p.Args) {
		end = len(p.Args)
	}
	rest := make([]string, 0, len(p.Args))
	rest = append(rest, p.Args[:i]...)
	rest = append(rest, p.Args[end:]...)
	return rest
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
