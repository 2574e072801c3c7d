package report

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// Enumeration of the different log levels.
const (
	LogLevelSilent  = iota // no output at all
	LogLevelError          // only errors
	LogLevelWarn           // errors and warnings
	LogLevelVerbose        // errors, warnings, phase timings and the closing summary (default)
)

// ParseLogLevel converts a log level name into one of the enumerated log
// levels.  Unknown names default to verbose.
func ParseLogLevel(name string) int {
	switch name {
	case "silent":
		return LogLevelSilent
	case "error":
		return LogLevelError
	case "warn", "warning":
		return LogLevelWarn
	default:
		return LogLevelVerbose
	}
}

// Message is a single diagnostic that was reported.
type Message struct {
	Kind     string
	Message  string
	Position *TextPosition
	IsError  bool
}

// Reporter collects and displays the diagnostics of one compilation unit.
// Errors are displayed as soon as they are reported; warnings are retained and
// displayed when the reporter is flushed.  The reporter is synchronized: its
// methods can be safely called from multiple goroutines.
type Reporter struct {
	// m synchronizes access to the counters and the output writer.
	m *sync.Mutex

	out      io.Writer
	logLevel int

	// warningsAsErrors promotes every warning to an error.
	warningsAsErrors bool

	errorCount int
	warnings   []*Message

	phase      string
	phaseStart time.Time
}

// NewReporter creates a new reporter writing to out at the given log level.
func NewReporter(out io.Writer, logLevel int) *Reporter {
	return &Reporter{
		m:        &sync.Mutex{},
		out:      out,
		logLevel: logLevel,
	}
}

// SetWarningsAsErrors makes all subsequent warnings count as errors.
func (r *Reporter) SetWarningsAsErrors(enabled bool) {
	r.m.Lock()
	defer r.m.Unlock()

	r.warningsAsErrors = enabled
}

// ReportError reports an error.  Compile errors are displayed with their kind
// and position; any other error is displayed as a plain message.
func (r *Reporter) ReportError(err error) {
	msg := &Message{Kind: "Compile", Message: err.Error(), IsError: true}

	var cerr *CompileError
	if errors.As(err, &cerr) {
		msg.Kind = cerr.Kind.String()
		msg.Message = cerr.Message
		msg.Position = cerr.Position
		if cerr.Original != nil {
			msg.Message += fmt.Sprintf(" (first definition at %s)", cerr.Original)
		}
	}

	r.handleMsg(msg)
}

// Warn reports a non-fatal warning at the given position.
func (r *Reporter) Warn(kind string, pos *TextPosition, message string, args ...interface{}) {
	r.handleMsg(&Message{
		Kind:     kind,
		Message:  fmt.Sprintf(message, args...),
		Position: pos,
	})
}

func (r *Reporter) handleMsg(msg *Message) {
	r.m.Lock()
	defer r.m.Unlock()

	if !msg.IsError && r.warningsAsErrors {
		msg.IsError = true
	}

	if msg.IsError {
		r.errorCount++

		if r.logLevel > LogLevelSilent {
			displayMessage(r.out, msg)
		}
	} else {
		r.warnings = append(r.warnings, msg)
	}
}

// Warnings returns all warnings reported so far in reporting order.
func (r *Reporter) Warnings() []*Message {
	r.m.Lock()
	defer r.m.Unlock()

	warnings := make([]*Message, len(r.warnings))
	copy(warnings, r.warnings)
	return warnings
}

// ErrorCount returns the number of errors reported so far.
func (r *Reporter) ErrorCount() int {
	r.m.Lock()
	defer r.m.Unlock()

	return r.errorCount
}

// ShouldProceed indicates whether or not compilation can continue: ie. no
// errors have been reported.
func (r *Reporter) ShouldProceed() bool {
	return r.ErrorCount() == 0
}

// BeginPhase marks the start of a compilation phase.  Phases are only
// displayed at the verbose log level.
func (r *Reporter) BeginPhase(phase string) {
	r.m.Lock()
	defer r.m.Unlock()

	r.phase = phase
	r.phaseStart = time.Now()
}

// EndPhase marks the end of the current compilation phase.
func (r *Reporter) EndPhase(success bool) {
	r.m.Lock()
	defer r.m.Unlock()

	if r.phase == "" {
		return
	}

	if r.logLevel == LogLevelVerbose {
		displayPhase(r.out, r.phase, success, time.Since(r.phaseStart))
	}

	r.phase = ""
}

// Flush displays all the retained warnings followed by the closing summary.
func (r *Reporter) Flush() {
	r.m.Lock()
	defer r.m.Unlock()

	if r.logLevel >= LogLevelWarn {
		for _, warning := range r.warnings {
			displayMessage(r.out, warning)
		}
	}

	if r.logLevel == LogLevelVerbose {
		displayFinished(r.out, r.errorCount, len(r.warnings))
	}
}
