package report

import (
	"fmt"
	"keel/common"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

// displayInfo prints an informational message to the user.
func displayInfo(tag, msg string) {
	InfoStyleBG.Print(tag)
	InfoColorFG.Println(" " + msg)
}

// DisplayInfoMessage displays an informational message regardless of the log
// level.  It is used for direct CLI output such as the version.
func DisplayInfoMessage(tag, msg string) {
	displayInfo(tag, msg)
}

// displayWarning prints a warning message to the user.
func displayWarning(tag, msg string) {
	WarnStyleBG.Print(tag)
	WarnColorFG.Println(" " + msg)
}

// displayStdError prints a standard Go error to the console.
func displayStdError(tag string, err error) {
	ErrorStyleBG.Print(tag)
	ErrorColorFG.Println(" " + err.Error())
}

const iceePostlude = `This error was not supposed to happen: it is a bug in the compiler.`

// displayICE displays an internal compiler error message.
func displayICE(msg string) {
	fmt.Print("\n\n")
	ErrorStyleBG.Print("Internal Compiler Error")
	ErrorColorFG.Println(" " + msg)
	InfoColorFG.Println(iceePostlude)
}

// displayFatal displays a fatal error message.
func displayFatal(msg string) {
	fmt.Print("\n\n")
	ErrorStyleBG.Print("Fatal Error")
	ErrorColorFG.Println(" " + msg)
}

// -----------------------------------------------------------------------------

// displayCompileError displays a compilation error along with the erroneous
// source text if it is available.
func displayCompileError(src *SourceFile, cerr *CompileError) {
	displayBanner(src, cerr.Kind)

	if cerr.Span != nil {
		fmt.Printf("%d:%d: ", cerr.Span.StartLine+1, cerr.Span.StartCol+1)
	}
	fmt.Println(cerr.Message)

	if cerr.Span != nil && src != nil && src.Text != "" {
		displayCodeSelection(src.Text, cerr.Span)
	}
}

// displayBanner displays the banner on top of all compilation errors.
func displayBanner(src *SourceFile, kind ErrorKind) {
	fmt.Print("\n\n-- ")
	kindStr := kind.String() + " Error"
	ErrorStyleBG.Print(kindStr)
	fmt.Print(" ")

	fileName := "<input>"
	if src != nil && src.Path != "" {
		fileName = filepath.Base(src.Path)
	}

	bannerLen := pterm.GetTerminalWidth() / 2
	if bannerLen > 50 {
		bannerLen = 50
	}

	dashCount := bannerLen - len(fileName) - len(kindStr) - 1
	if dashCount < 2 {
		dashCount = 2
	}

	fmt.Print(strings.Repeat("-", dashCount) + " ")
	InfoColorFG.Println(fileName)
}

// displayCodeSelection displays the erroneous code (with line numbers) and
// underlines the selected span with carets.
func displayCodeSelection(text string, span *TextSpan) {
	fmt.Println()

	lines := SelectLines(text, span)
	if len(lines) == 0 {
		return
	}

	// calculate the minimum line indentation so it can be trimmed off
	minIndent := -1
	for _, line := range lines {
		indent := len(line) - len(strings.TrimLeft(line, " "))
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}

	maxLineNumWidth := len(strconv.Itoa(span.EndLine+1)) + 1
	lineNumFmtStr := "%-" + strconv.Itoa(maxLineNumWidth) + "v"

	for i, line := range lines {
		InfoColorFG.Print(fmt.Sprintf(lineNumFmtStr, i+span.StartLine+1))
		fmt.Print("|  ")
		fmt.Println(line[minIndent:])

		fmt.Print(strings.Repeat(" ", maxLineNumWidth), "|  ")
		prefix, count := caretRange(line, i, len(lines), span, minIndent)
		fmt.Print(strings.Repeat(" ", prefix))
		ErrorColorFG.Println(strings.Repeat("^", count))
	}

	fmt.Println()
}

// SelectLines returns the lines of text covered by span with tabs expanded to
// four spaces.
func SelectLines(text string, span *TextSpan) []string {
	allLines := strings.Split(text, "\n")

	var lines []string
	for ln := span.StartLine; ln <= span.EndLine && ln < len(allLines); ln++ {
		if ln < 0 {
			continue
		}

		lines = append(lines, strings.ReplaceAll(strings.TrimRight(allLines[ln], "\r"), "\t", "    "))
	}

	return lines
}

// caretRange computes the number of spaces before the caret underline and
// the number of carets for the i'th of n selected lines.  The first line is
// underlined from the start column; the last line until the (inclusive) end
// column; lines in between are underlined completely.
func caretRange(line string, i, n int, span *TextSpan, minIndent int) (int, int) {
	start := minIndent
	if i == 0 {
		start = span.StartCol
	}

	end := len(line)
	if i == n-1 && span.EndCol+1 < end {
		end = span.EndCol + 1
	}

	if start < minIndent {
		start = minIndent
	}

	if end < start {
		return start - minIndent, 1
	}

	return start - minIndent, end - start
}

// -----------------------------------------------------------------------------

// The current phase and the time it began.
var currentPhase string
var phaseStartTime time.Time

const maxPhaseLength = len("Resolving")

var phaseDonePrinter = pterm.PrefixPrinter{
	MessageStyle: pterm.NewStyle(pterm.FgDefault),
	Prefix: pterm.Prefix{
		Style: SuccessStyleBG,
		Text:  "Done",
	},
}

var phaseFailPrinter = pterm.PrefixPrinter{
	MessageStyle: pterm.NewStyle(pterm.FgDefault),
	Prefix: pterm.Prefix{
		Style: ErrorStyleBG,
		Text:  "Fail",
	},
}

// displayBeginPhase marks the beginning of a compilation phase.
func displayBeginPhase(phase string) {
	currentPhase = phase
	phaseStartTime = time.Now()
}

// displayEndPhase displays the end of the current compilation phase.
func displayEndPhase(success bool) {
	if currentPhase == "" {
		return
	}

	if success {
		phaseDonePrinter.Println(
			currentPhase+strings.Repeat(" ", padding(currentPhase)),
			fmt.Sprintf("(%.3fs)", time.Since(phaseStartTime).Seconds()),
		)
	} else {
		phaseFailPrinter.Println(currentPhase + strings.Repeat(" ", padding(currentPhase)))
	}

	currentPhase = ""
}

func padding(phase string) int {
	if len(phase) > maxPhaseLength {
		return 2
	}

	return maxPhaseLength - len(phase) + 2
}

// displayCompilationFinished displays the closing summary.
func displayCompilationFinished(success bool, errorCount int) {
	fmt.Print("\n")

	if success {
		SuccessColorFG.Print("All done! ")
	} else {
		ErrorColorFG.Print("Oh no! ")
	}

	fmt.Print("(")

	switch errorCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Println(" errors)")
	case 1:
		ErrorColorFG.Print(1)
		fmt.Println(" error)")
	default:
		ErrorColorFG.Print(errorCount)
		fmt.Println(" errors)")
	}
}

// DisplayHeader displays the compiler version banner.
func DisplayHeader(action string) {
	if rep != nil && rep.logLevel == LogLevelVerbose {
		fmt.Print("keel ")
		InfoColorFG.Print("v" + common.KeelVersion)
		fmt.Print(" -- ")
		InfoColorFG.Println(action)
	}
}
