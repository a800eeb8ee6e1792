package messages

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/aatumaykin/sweepbot/internal/chat"
	"github.com/aatumaykin/sweepbot/internal/constants"
)

var printer = message.NewPrinter(language.English)

// FormatCount renders n with digit grouping (e.g. "12,345"). Cleanup
// counts in large groups run into the hundreds of thousands, so bare
// digit runs are hard to read in chat.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatReport formats the final report of a cleanup run. The text
// replaces the "starting cleanup" status message via edit.
//
// Parameters:
//   - report: The finished run's summary
//
// Returns:
//   - Formatted report string ready for display
func FormatReport(report chat.Report) string {
	builder := &strings.Builder{}

	// Add report header: success or the failure reason
	if report.State == chat.StateDone {
		builder.WriteString(constants.MsgReportHeader)
	} else {
		fmt.Fprintf(builder, constants.MsgReportFailedHeader, report.Reason)
	}
	builder.WriteString("\n")

	// Add per-bucket counts
	fmt.Fprintf(builder, constants.MsgReportKept, FormatCount(report.Counters.Kept))
	builder.WriteString("\n")
	fmt.Fprintf(builder, constants.MsgReportDeleted, FormatCount(report.Counters.Deleted))
	builder.WriteString("\n")
	fmt.Fprintf(builder, constants.MsgReportErrors, FormatCount(report.Counters.Errored))

	// Add duration for completed runs
	if d := report.Duration(); d > 0 {
		builder.WriteString("\n")
		fmt.Fprintf(builder, constants.MsgReportDuration, FormatDuration(d))
	}

	return builder.String()
}

// FormatProgress formats the /status reply for an in-flight run.
func FormatProgress(state chat.RunState, counters chat.Counters) string {
	return fmt.Sprintf(constants.MsgStatusRunning,
		state, counters.Total(), counters.Kept, counters.Deleted, counters.Errored)
}

// FormatDuration renders d in a human-readable coarse form: seconds
// below a minute, minutes and seconds above.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) - m*60
	return fmt.Sprintf("%dm %ds", m, s)
}
