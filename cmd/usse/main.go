// usse - streaming regex/template text transformer
//
// Matches a regular expression against each line of the input (or against
// the whole input) and writes every match through an output template.
// Uses manual argument parsing so flags may carry their value without a
// space, like -D; or -dwindows.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/kolkov/usse"
	"github.com/kolkov/usse/internal/profile"
	"github.com/kolkov/usse/internal/runtime"
)

// version is set at build time via -ldflags.
// For development builds, it will be "dev".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	shortUsage = "usage: usse [options] 'pattern' 'template' [file ...]\n       usse [options] -p profile.yaml [file ...]"
	longUsage  = `Template syntax:
  %0 .. %9          numbered capture group
  %<12>             capture group 10 and above
  %<name>           named capture group
  %%text            text up to the next %, copied as is
  \t \n \r \v \\    control characters
  \u{1F600}         Unicode character (also \x{..} and \U{..})

Pattern flags:
  -i                ignore case
  -m                multi-line: ^ and $ match at line breaks
  -s                dot matches newline
  -U                swap greedy and lazy repetition
  -x                extended: ignore whitespace and # comments in pattern
  -a                ASCII \d \w \s (default: Unicode)
  -F                pattern is a fixed string
  --posix           use POSIX leftmost-longest matching
  --no-posix        use leftmost-first matching (default)

Input and output:
  -n                nice: copy unmatched text through unchanged
  -c                continuous: match over the whole input, not per line
  -d name           line delimiter preset: unix, windows, mac, acorn, nl, rs,
                    or hex bytes as hex:0d0a (default unix)
  -D text           line delimiter given as literal text
  -o file           write to file ("-" for stdout)
  -e                write to stderr
  -w                write the result back to the input file
  --decode policy   invalid UTF-8 handling: auto, strict, lenient
  --no-final-newline
                    do not terminate stdout output with a newline

Templates and profiles:
  -g                template is a Go text/template ({{.Group 1}}, {{.Named.key}})
  -p file           load pattern, template and options from a YAML profile;
                    flags given on the command line take precedence
  --dump-profile    print the effective profile as YAML and exit

Debugging:
  -v                verbose: log debug events to stderr
  -da               print the compiled template instructions and exit

Other:
  -h, --help        show this help message
  -version          show usse version and exit
`
)

//nolint:gocyclo,funlen // CLI argument parsing is inherently complex
func main() {
	// Options are recorded as edits of the profile so that they apply on
	// top of a profile loaded with -p, whatever their order.
	var edits []func(*profile.Profile)
	set := func(f func(*profile.Profile)) {
		edits = append(edits, f)
	}
	profilePath := ""
	verbose := false
	debugAsm := false
	dumpProfile := false

	var i int
	for i = 1; i < len(os.Args); i++ {
		// Stop on explicit end of args or first arg not prefixed with "-"
		arg := os.Args[i]
		if arg == "--" {
			i++
			break
		}
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			break
		}

		switch arg {
		case "-i":
			set(func(p *profile.Profile) { p.Flags.IgnoreCase = true })
		case "-m":
			set(func(p *profile.Profile) { p.Flags.MultiLine = true })
		case "-s":
			set(func(p *profile.Profile) { p.Flags.DotAll = true })
		case "-U":
			set(func(p *profile.Profile) { p.Flags.SwapGreed = true })
		case "-x":
			set(func(p *profile.Profile) { p.Flags.Extended = true })
		case "-a":
			set(func(p *profile.Profile) { p.Flags.ASCII = true })
		case "-F":
			set(func(p *profile.Profile) { p.Flags.Literal = true })
		case "--posix":
			set(func(p *profile.Profile) { p.Flags.Longest = true })
		case "--no-posix":
			set(func(p *profile.Profile) { p.Flags.Longest = false })
		case "-n":
			set(func(p *profile.Profile) { p.Nice = true })
		case "-c":
			set(func(p *profile.Profile) { p.Mode = "continuous" })
		case "-d":
			name := needArg(&i, arg)
			set(delimiterPreset(name))
		case "-D":
			text := needArg(&i, arg)
			set(delimiterText(text))
		case "-o":
			path := needArg(&i, arg)
			set(func(p *profile.Profile) { p.Output = path })
		case "-e":
			set(func(p *profile.Profile) { p.Output = "stderr" })
		case "-w":
			set(func(p *profile.Profile) { p.Output = "in-place" })
		case "--decode":
			policy := needArg(&i, arg)
			set(func(p *profile.Profile) { p.Decode = policy })
		case "--no-final-newline":
			set(func(p *profile.Profile) {
				no := false
				p.FinalNewline = &no
			})
		case "-g":
			set(func(p *profile.Profile) { p.Syntax = "go" })
		case "-p":
			profilePath = needArg(&i, arg)
		case "--dump-profile":
			dumpProfile = true
		case "-v":
			verbose = true
		case "-da":
			debugAsm = true
		case "-h", "--help":
			fmt.Printf("usse %s - streaming regex/template text transformer\n\n%s\n\n%s", version, shortUsage, longUsage)
			os.Exit(0)
		case "-version", "--version":
			fmt.Printf("usse version %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
			fmt.Println("  regex:  coregex")
			os.Exit(0)
		default:
			// Handle flags with no space: -D;, -dwindows, -oout.txt, -pjob.yaml
			switch {
			case strings.HasPrefix(arg, "-D"):
				set(delimiterText(arg[2:]))
			case strings.HasPrefix(arg, "-d"):
				set(delimiterPreset(arg[2:]))
			case strings.HasPrefix(arg, "-o"):
				path := arg[2:]
				set(func(p *profile.Profile) { p.Output = path })
			case strings.HasPrefix(arg, "-p"):
				profilePath = arg[2:]
			case strings.HasPrefix(arg, "--decode="):
				policy := strings.TrimPrefix(arg, "--decode=")
				set(func(p *profile.Profile) { p.Decode = policy })
			default:
				errorExitf("flag provided but not defined: %s", arg)
			}
		}
	}

	// Remaining args are pattern, template and input files
	args := os.Args[i:]

	prof := &profile.Profile{}
	if profilePath != "" {
		loaded, err := profile.Load(profilePath)
		if err != nil {
			errorExit(err)
		}
		prof = loaded
	} else {
		if len(args) < 2 {
			errorExitf(shortUsage)
		}
		prof.Pattern, prof.Template = args[0], args[1]
		args = args[2:]
	}
	for _, edit := range edits {
		edit(prof)
	}

	inputFiles := args
	if len(inputFiles) == 0 {
		inputFiles = []string{prof.Input}
	}

	if dumpProfile {
		if len(args) == 1 {
			prof.Input = args[0]
		}
		data, err := profile.Encode(prof)
		if err != nil {
			errorExit(err)
		}
		os.Stdout.Write(data)
		os.Exit(0)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	config, err := prof.Config()
	if err != nil {
		errorExit(err)
	}
	config.Logger = logger

	prog, err := usse.Compile(prof.Pattern, prof.Template, config)
	if err != nil {
		errorExit(err)
	}

	if debugAsm {
		fmt.Fprint(os.Stderr, prog.Disassemble())
		os.Exit(0)
	}

	for _, ref := range prog.UnknownRefs() {
		logger.Warn("template references a group the pattern does not have; it will expand to nothing",
			"ref", ref, "pattern", prof.Pattern)
	}

	out := prof.Target()
	if out.Kind == usse.File && len(inputFiles) > 1 {
		errorExitf("-o cannot be combined with more than one input file")
	}

	var total usse.Stats
	for _, file := range inputFiles {
		stats, err := prog.RunFile(file, out)
		total.Lines += stats.Lines
		total.Matches += stats.Matches
		total.Prefiltered += stats.Prefiltered
		total.DecodeErrors += stats.DecodeErrors
		total.Written += stats.Written
		if err != nil {
			errorExit(err)
		}
	}
	logger.Debug("finished", "files", len(inputFiles), "stats", total)
}

// needArg returns the value following the flag at *i.
func needArg(i *int, flag string) string {
	if *i+1 >= len(os.Args) {
		errorExitf("flag needs an argument: %s", flag)
	}
	*i++
	return os.Args[*i]
}

func delimiterPreset(name string) func(*profile.Profile) {
	if _, err := runtime.Delimiter(name); err != nil {
		errorExitf("%v (presets: %s)", err, strings.Join(runtime.DelimiterNames(), ", "))
	}
	return func(p *profile.Profile) {
		p.Delimiter = name
		p.DelimiterText = ""
	}
}

func delimiterText(text string) func(*profile.Profile) {
	if text == "" {
		errorExitf("empty line delimiter")
	}
	return func(p *profile.Profile) {
		p.DelimiterText = text
		p.Delimiter = ""
	}
}

// errorExitf prints formatted error message and exits with code 1
func errorExitf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "usse: "+format+"\n", args...)
	os.Exit(1)
}

// errorExit prints error and exits with code 1
func errorExit(err error) {
	fmt.Fprintf(os.Stderr, "usse: %v\n", err)
	os.Exit(1)
}
