package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
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
)

// maxBannerLen caps the width of the dashed message banner.
const maxBannerLen = 50

// displayMessage displays a compile error or warning: a banner naming the kind
// and the file, the message itself, and the offending source text if the file
// can still be read.
func displayMessage(w io.Writer, msg *Message) {
	var label string
	var labelStyle *pterm.Style
	if msg.IsError {
		label = msg.Kind + " Error"
		labelStyle = ErrorStyleBG
	} else {
		label = msg.Kind + " Warning"
		labelStyle = WarnStyleBG
	}

	fileName := "<input>"
	if msg.Position != nil && msg.Position.File != "" {
		fileName = filepath.Base(msg.Position.File)
	}

	bannerLen := pterm.GetTerminalWidth() / 2
	if bannerLen > maxBannerLen || bannerLen <= 0 {
		bannerLen = maxBannerLen
	}
	dashCount := bannerLen - len(fileName) - len(label) - 1
	if dashCount < 1 {
		dashCount = 1
	}

	fmt.Fprintf(w, "\n-- %s %s %s\n", labelStyle.Sprint(label), strings.Repeat("-", dashCount), InfoColorFG.Sprint(fileName))

	if msg.Position != nil {
		fmt.Fprintf(w, "%s: %s\n", msg.Position, msg.Message)
		displayCodeSelection(w, msg.Position)
	} else {
		fmt.Fprintln(w, msg.Message)
	}
}

// displayCodeSelection displays the selected source lines with line numbers
// and underlines the selection.  Nothing is displayed if the file cannot be
// read: the position is still printed in the message line.
func displayCodeSelection(w io.Writer, pos *TextPosition) {
	if pos.File == "" || pos.StartLn <= 0 || pos.EndLn < pos.StartLn {
		return
	}

	f, err := os.Open(pos.File)
	if err != nil {
		return
	}
	defer f.Close()

	lines := make([]string, 0, pos.EndLn-pos.StartLn+1)
	sc := bufio.NewScanner(f)
	for lineNumber := 1; sc.Scan() && lineNumber <= pos.EndLn; lineNumber++ {
		if lineNumber >= pos.StartLn {
			lines = append(lines, strings.ReplaceAll(sc.Text(), "\t", "    "))
		}
	}

	if sc.Err() != nil || len(lines) == 0 {
		return
	}

	minIndent := -1
	for _, line := range lines {
		indent := len(line) - len(strings.TrimLeft(line, " "))
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}

	lineNumWidth := len(strconv.Itoa(pos.EndLn)) + 1
	lineNumFmtStr := "%-" + strconv.Itoa(lineNumWidth) + "v"

	fmt.Fprintln(w)
	for i, line := range lines {
		fmt.Fprint(w, InfoColorFG.Sprint(fmt.Sprintf(lineNumFmtStr, i+pos.StartLn)), "|  ", line[minIndent:], "\n")
		fmt.Fprint(w, strings.Repeat(" ", lineNumWidth), "|  ")

		start := 0
		if i == 0 {
			start = pos.StartCol - minIndent
		}

		end := len(line) - minIndent
		if i == len(lines)-1 && pos.EndCol-minIndent < end {
			end = pos.EndCol - minIndent
		}

		if start < 0 {
			start = 0
		}
		if end < start {
			end = start
		}

		fmt.Fprint(w, strings.Repeat(" ", start), ErrorColorFG.Sprint(strings.Repeat("^", end-start)), "\n")
	}
	fmt.Fprintln(w)
}

// maxPhaseLength pads phase names so that timings line up.
const maxPhaseLength = len("Registering")

// displayPhase displays the outcome of a compilation phase.
func displayPhase(w io.Writer, phase string, success bool, elapsed time.Duration) {
	padding := 1
	if len(phase) < maxPhaseLength {
		padding += maxPhaseLength - len(phase)
	}

	if success {
		fmt.Fprintf(w, "%s %s%s(%.3fs)\n", SuccessStyleBG.Sprint("Done"), phase, strings.Repeat(" ", padding), elapsed.Seconds())
	} else {
		fmt.Fprintf(w, "%s %s\n", ErrorStyleBG.Sprint("Fail"), phase)
	}
}

// displayFinished displays the closing summary.
func displayFinished(w io.Writer, errorCount, warningCount int) {
	fmt.Fprintln(w)

	if errorCount == 0 {
		fmt.Fprint(w, SuccessColorFG.Sprint("All done! "))
	} else {
		fmt.Fprint(w, ErrorColorFG.Sprint("Oh no! "))
	}

	errColor := SuccessColorFG
	if errorCount > 0 {
		errColor = ErrorColorFG
	}

	warnColor := SuccessColorFG
	if warningCount > 0 {
		warnColor = WarnColorFG
	}

	fmt.Fprintf(w, "(%s %s, %s %s)\n",
		errColor.Sprint(errorCount), plural(errorCount, "error"),
		warnColor.Sprint(warningCount), plural(warningCount, "warning"),
	)
}

func plural(n int, noun string) string {
	if n == 1 {
		return noun
	}

	return noun + "s"
}
