package report

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// Reporter is responsible for reporting errors, warnings, and other kinds of
// messages to the user during program execution.  The reporter respects the
// set log level and is synchronized: its methods can be safely called from
// multiple goroutines.
type Reporter struct {
	// The mutex used to synchonize different error method calls.
	m *sync.Mutex

	// The selected log level of the reporter.  This must be one of the
	// enumerated log levels below.
	logLevel int

	// The number of errors reported so far.
	errorCount int
}

// Enumeration of the different possible log levels.
const (
	LogLevelSilent  = iota // Displays no output.
	LogLevelError          // Displays only errors to the user.
	LogLevelWarn           // Displays only warnings and errors to the user.
	LogLevelVerbose        // Displays all compilation messages to the user (default).
)

// LogLevelNames lists the accepted log level names in increasing verbosity.
var LogLevelNames = []string{"silent", "error", "warn", "verbose"}

// LogLevelFromName converts a log level name to its log level.  Any name which
// is not recognized selects the verbose log level.
func LogLevelFromName(name string) int {
	for i, lname := range LogLevelNames {
		if lname == name {
			return i
		}
	}

	return LogLevelVerbose
}

// rep is the global reporter instance.
var rep *Reporter

// InitReporter initializes the global error reporter to the given log level.
// If the reporter has already been initialized, this function does nothing.
func InitReporter(logLevel int) {
	if rep == nil {
		rep = &Reporter{
			m:        &sync.Mutex{},
			logLevel: logLevel,
		}
	}
}

// SourceFile is the text of a compiled source as supplied by the host.  It is
// only used to display the offending lines of an error.
type SourceFile struct {
	// The representative path of the file used in error banners.
	Path string

	// The full source text.  This may be empty in which case no source text
	// is displayed with errors.
	Text string
}

// -----------------------------------------------------------------------------

// ReportError reports an error returned by the compiler.  Compile errors and
// internal errors are displayed in their own formats; any other error is
// displayed as a standard error.
func ReportError(src *SourceFile, err error) {
	var cerr *CompileError
	var ierr *InternalError

	if errors.As(err, &cerr) {
		ReportCompileError(src, cerr)
	} else if errors.As(err, &ierr) {
		ReportICE(ierr.Message)
	} else {
		ReportStdError(src.Path, err)
	}
}

// ReportCompileError reports a compilation error: ie. erroneous input code.
func ReportCompileError(src *SourceFile, cerr *CompileError) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.errorCount++

	if rep.logLevel > LogLevelSilent {
		displayEndPhase(false)
		displayCompileError(src, cerr)
	}
}

// ReportICE reports an internal compiler error.  These are errors that
// specifically result from a bug or unexpected condition occurring within the
// compiler: they are not intended to ever happen.  These errors are always
// displayed regardless of log level.
func ReportICE(message string, args ...interface{}) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.errorCount++

	displayEndPhase(false)
	displayICE(fmt.Sprintf(message, args...))
}

// ReportFatal reports a fatal error and exits.  These are errors that should
// cause all compilation to stop immediately.  However, they are expected
// errors that generally result from invalid configuration of some form: a
// missing module file, an unreadable library manifest, etc.
func ReportFatal(message string, args ...interface{}) {
	if rep.logLevel > LogLevelSilent {
		rep.m.Lock()
		defer rep.m.Unlock()

		displayEndPhase(false)
		displayFatal(fmt.Sprintf(message, args...))
	}

	os.Exit(1)
}

// ReportStdError reports a non-fatal, standard Go error.
func ReportStdError(tag string, err error) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.errorCount++

	if rep.logLevel > LogLevelSilent {
		displayStdError(tag, err)
	}
}

// ReportWarning reports a warning.  Warnings do not count as errors.
func ReportWarning(tag, message string, args ...interface{}) {
	if rep != nil && rep.logLevel >= LogLevelWarn {
		rep.m.Lock()
		defer rep.m.Unlock()

		displayWarning(tag, fmt.Sprintf(message, args...))
	}
}

// ReportInfo reports an informational message.  It is only displayed at the
// verbose log level.
func ReportInfo(tag, message string, args ...interface{}) {
	if verbose() {
		rep.m.Lock()
		defer rep.m.Unlock()

		displayInfo(tag, fmt.Sprintf(message, args...))
	}
}

// -----------------------------------------------------------------------------

// ReportBeginPhase reports the beginning of a compilation phase.
func ReportBeginPhase(phase string) {
	if verbose() {
		rep.m.Lock()
		defer rep.m.Unlock()

		displayBeginPhase(phase)
	}
}

// ReportEndPhase reports the successful end of the current phase.
func ReportEndPhase() {
	if verbose() {
		rep.m.Lock()
		defer rep.m.Unlock()

		displayEndPhase(true)
	}
}

// ReportCompilationFinished displays the closing compilation summary.
func ReportCompilationFinished() {
	if rep.logLevel > LogLevelSilent {
		rep.m.Lock()
		defer rep.m.Unlock()

		displayCompilationFinished(rep.errorCount == 0, rep.errorCount)
	}
}

// verbose returns whether verbose output is enabled.  Hosts that never
// initialize the reporter, such as tests, get no progress output.
func verbose() bool {
	return rep != nil && rep.logLevel == LogLevelVerbose
}

// AnyErrors returns whether or not any errors were reported.
func AnyErrors() bool {
	return rep.errorCount > 0
}
