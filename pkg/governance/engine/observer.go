package engine

// Recovery paths reported to Observer.IntegrityRecovered.
const (
	RecoveryReload       = "reload"
	RecoveryReinitialize = "reinitialize"
)

// Persistence targets reported to Observer.PersistenceFailed.
const (
	TargetState    = "state"
	TargetEventLog = "event_log"
)

// Observer receives engine telemetry. Calls are made while the session lock
// is held and must not call back into the engine.
type Observer interface {
	CycleStarted()
	// ResponseFinalized reports the rule that replaced a response, or 0
	// when the response passed.
	ResponseFinalized(blockedBy int)
	StreamingWarned(ruleID int)
	ViolationLogged(ruleID int)
	ReinforcementCompleted()
	IntegrityRecovered(path string)
	CommandHandled(command string, known bool)
	DriftObserved(drift float64)
	PersistenceFailed(target string)
}

// NopObserver discards all telemetry.
type NopObserver struct{}

func (NopObserver) CycleStarted()               {}
func (NopObserver) ResponseFinalized(int)       {}
func (NopObserver) StreamingWarned(int)         {}
func (NopObserver) ViolationLogged(int)         {}
func (NopObserver) ReinforcementCompleted()     {}
func (NopObserver) IntegrityRecovered(string)   {}
func (NopObserver) CommandHandled(string, bool) {}
func (NopObserver) DriftObserved(float64)       {}
func (NopObserver) PersistenceFailed(string)    {}
