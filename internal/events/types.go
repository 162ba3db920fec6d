package events

// EventType represents different event types
type EventType string

const (
	// Screening lifecycle
	ScreeningStarted   EventType = "SCREENING_STARTED"
	ScreeningProgress  EventType = "SCREENING_PROGRESS"
	ScreeningCompleted EventType = "SCREENING_COMPLETED"
	SymbolFailed       EventType = "SYMBOL_FAILED"

	// Data maintenance
	BarsImported     EventType = "BARS_IMPORTED"
	ReportArchived   EventType = "REPORT_ARCHIVED"
	ScheduledJobDone EventType = "SCHEDULED_JOB_DONE"

	ErrorOccurred EventType = "ERROR_OCCURRED"
)

// AllTypes lists every event type, in the order subscribers usually want them.
func AllTypes() []EventType {
	return []EventType{
		ScreeningStarted,
		ScreeningProgress,
		ScreeningCompleted,
		SymbolFailed,
		BarsImported,
		ReportArchived,
		ScheduledJobDone,
		ErrorOccurred,
	}
}
