package entity

type Severity string

const (
	SeverityReady        Severity = "ready"
	SeverityConnecting   Severity = "connecting"
	SeverityConnected    Severity = "connected"
	SeverityWarning      Severity = "warning"
	SeverityError        Severity = "error"
	SeverityDisconnected Severity = "disconnected"
)

type MoveSource string

const (
	SourceLocal   MoveSource = "local"
	SourceRemote  MoveSource = "remote"
	SourceAI      MoveSource = "ai"
	SourceTimeout MoveSource = "timeout"
)

type MoveEvent struct {
	Move   Move       `json:"move"`
	Player Cell       `json:"player"`
	Source MoveSource `json:"source"`
}

// Automatic reports whether the move was played by the turn timer.
func (that MoveEvent) Automatic() bool {
	return that.Source == SourceTimeout
}
