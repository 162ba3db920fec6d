package events

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// ScreeningStartedData contains data for ScreeningStarted events
type ScreeningStartedData struct {
	RunID      string `json:"run_id"`
	Market     string `json:"market,omitempty"`
	AssetClass string `json:"asset_class,omitempty"`
	Symbols    int    `json:"symbols"`
	BatchSize  int    `json:"batch_size"`
}

func (d *ScreeningStartedData) EventType() EventType { return ScreeningStarted }

// ScreeningProgressData contains data for ScreeningProgress events
type ScreeningProgressData struct {
	RunID     string  `json:"run_id"`
	Percent   float64 `json:"percent"`
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
}

func (d *ScreeningProgressData) EventType() EventType { return ScreeningProgress }

// ScreeningCompletedData contains data for ScreeningCompleted events
type ScreeningCompletedData struct {
	RunID      string  `json:"run_id"`
	Results    int     `json:"results"`
	Failed     int     `json:"failed"`
	DurationMs int64   `json:"duration_ms"`
	BestSymbol string  `json:"best_symbol,omitempty"`
	BestProfit float64 `json:"best_profit_percentage,omitempty"`
}

func (d *ScreeningCompletedData) EventType() EventType { return ScreeningCompleted }

// SymbolFailedData contains data for SymbolFailed events
type SymbolFailedData struct {
	RunID  string `json:"run_id"`
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

func (d *SymbolFailedData) EventType() EventType { return SymbolFailed }

// BarsImportedData contains data for BarsImported events
type BarsImportedData struct {
	Symbol string `json:"symbol"`
	Count  int    `json:"count"`
	Issues int    `json:"issues"`
}

func (d *BarsImportedData) EventType() EventType { return BarsImported }

// ReportArchivedData contains data for ReportArchived events
type ReportArchivedData struct {
	RunID    string `json:"run_id"`
	Location string `json:"location"`
	Bytes    int64  `json:"bytes"`
}

func (d *ReportArchivedData) EventType() EventType { return ReportArchived }

// ScheduledJobDoneData contains data for ScheduledJobDone events
type ScheduledJobDoneData struct {
	Job        string `json:"job"`
	Success    bool   `json:"success"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

func (d *ScheduledJobDoneData) EventType() EventType { return ScheduledJobDone }

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (d *ErrorEventData) EventType() EventType { return ErrorOccurred }
