package backtest

// CheckStop reports whether day breaches the stop price for the operation.
func CheckStop(op Operation, stop float64, day Bar) bool {
	switch op {
	case OperationBuy:
		return usable(day.Low) && day.Low <= stop
	case OperationSell:
		return usable(day.High) && day.High >= stop
	}
	return false
}

// ExitDecision is the outcome of evaluating one day of an open position.
type ExitDecision struct {
	Closed bool
	Price  float64
	Reason ExitReason
	Note   Note
}

// EvaluateExit checks the stop first and only then the period end. A period
// end without a usable close leaves the position open.
func EvaluateExit(pos Position, op Operation, day Bar, lastOfPeriod bool) ExitDecision {
	if CheckStop(op, pos.StopPrice, day) {
		return ExitDecision{Closed: true, Price: pos.StopPrice, Reason: ExitStopLoss}
	}
	if !lastOfPeriod {
		return ExitDecision{}
	}
	if !usable(day.Close) {
		return ExitDecision{Note: NoteMissingExitPrice}
	}
	return ExitDecision{Closed: true, Price: day.Close, Reason: ExitPeriodEnd}
}
