package constants

// Package constants contains all user-visible text constants used by sweepbot.

// Command replies
const (
	// MsgCleanupStarted is posted when a sweep begins; it is later
	// edited into the final report.
	MsgCleanupStarted = "🧹 Starting message cleanup..."

	// MsgNotAllowed rejects a command from an unauthorized principal.
	MsgNotAllowed = "❌ Only admins can use this command."

	// MsgRunInProgress rejects a second /clean while one is active.
	MsgRunInProgress = "⏳ A cleanup is already running in this chat."

	// MsgNoDeleteRights is posted when the bot lacks delete permission.
	MsgNoDeleteRights = "❌ I need the \"Delete messages\" admin right in this chat."

	// MsgNothingRunning answers /cancel and /status when no run is active.
	MsgNothingRunning = "ℹ️ No cleanup is running in this chat."

	// MsgCancelRequested confirms a /cancel; the run stops after the
	// current batch.
	MsgCancelRequested = "🛑 Cancelling after the current batch..."
)

// Report messages
const (
	// MsgReportHeader opens the final report of a completed sweep.
	MsgReportHeader = "✅ Cleanup completed!"

	// MsgReportFailedHeader opens the report of an aborted sweep.
	MsgReportFailedHeader = "⚠️ Cleanup stopped (%s)."

	// MsgReportKept is the kept-count line of the report.
	MsgReportKept = "• Messages kept (admin): %s"

	// MsgReportDeleted is the deleted-count line of the report.
	MsgReportDeleted = "• Messages deleted: %s"

	// MsgReportErrors is the error-count line of the report.
	MsgReportErrors = "• Errors encountered: %s"

	// MsgReportDuration is the duration line of the report.
	MsgReportDuration = "• Took: %s"

	// MsgStatusRunning reports an in-flight sweep.
	MsgStatusRunning = "🧹 Cleanup %s: %d scanned so far (kept %d, deleted %d, errors %d)"
)

// CLI error messages
const (
	// MsgErrorFormat is the prefix for formatting error messages.
	MsgErrorFormat = "Error: %v"

	// MsgConfigLoadError is the error message when configuration loading fails.
	MsgConfigLoadError = "❌ Failed to load configuration: %v\n"

	// MsgConfigValidationError is the message when configuration validation fails.
	MsgConfigValidationError = "❌ Configuration validation failed:\n"

	// MsgConfigValidatePrefix is the prefix for configuration validation errors.
	MsgConfigValidatePrefix = "  - %v\n"
)

// Private chat messages
const (
	// MsgStartHelp is the /start reply in a private chat.
	MsgStartHelp = "👋 Hello! I'm a group cleaner bot.\n\n" +
		"Add me to a group where I have admin privileges, " +
		"then use /clean in the group to delete all non-admin messages.\n\n" +
		"⚠️ Note: I will preserve messages sent by admins, " +
		"including those sent anonymously."

	// MsgGroupOnly rejects group commands sent in a private chat.
	MsgGroupOnly = "This command only works inside a group."
)
