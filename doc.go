// Package usse rewrites text by matching a regular expression and expanding
// a template for every match.
//
// usse reads its input either line by line, split on a configurable and
// possibly multi-byte delimiter, or as one continuous text. Each match is
// written through a template; with the Nice option, text outside the matches
// is copied through unchanged. Matching is done by the coregex engine.
//
// # Quick Start
//
// For simple one-off execution:
//
//	output, err := usse.Run(`(\w),(\d)`, "%2-%1", strings.NewReader("a,1\nb,2\n"), nil)
//	// output: "1-a\n2-b\n"
//
// # Templates
//
// The default template language is small:
//   - %0 to %9 insert a numbered group, %<12> a group numbered 10 or more
//   - %<name> inserts a named group
//   - %%text inserts text, up to the next %, without interpretation
//   - \t \n \r \v \\ and \u{H} \x{H} \U{H} insert characters
//
// Groups that did not take part in a match insert nothing. With
// [SyntaxGo] the template is a Go text/template instead, executed against
// the groups, the named groups and the environment.
//
// # Compiled Programs
//
// For repeated execution of the same transform:
//
//	prog, err := usse.Compile(`(?P<key>\w+)=(?P<val>\w+)`, "%<val>=%<key>", &usse.Config{
//	    Nice: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, file := range files {
//	    stats, err := prog.RunFile(file, usse.Output{Kind: usse.InPlace})
//	    // ...
//	}
//
// Writing to the input file is safe: the input is read and transformed
// completely before the file is truncated.
//
// # Configuration
//
// The [Config] type allows customization:
//   - Pattern flags (IgnoreCase, MultiLine, DotAll, Extended, Literal, ...)
//   - Line delimiter, by bytes or by preset name
//   - Line or continuous mode, and the Nice pass-through
//   - Handling of input that is not valid UTF-8
//
// # Error Handling
//
// Errors are returned as specific types for detailed handling:
//   - [ConfigError]: bad pattern, template or delimiter
//   - [DecodeError]: input that is not valid UTF-8
//   - [IOError]: failed reads and writes
//
// # Thread Safety
//
// Compiled [Program] objects are safe for concurrent use.
package usse
