package constants

// CommandClean triggers a full-history sweep in the current group.
const CommandClean = "clean"

// CommandCancel aborts the in-flight sweep for the current group.
const CommandCancel = "cancel"

// CommandStatus reports the active run or the last finished report.
const CommandStatus = "status"

// CommandStart is the private-chat greeting command.
const CommandStart = "start"
