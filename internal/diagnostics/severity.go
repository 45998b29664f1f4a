package diagnostics

// Severity defines how a diagnostic affects the outcome of a scenario.
type Severity uint8

const (
	// SevWarning never fails a scenario.
	SevWarning Severity = iota
	// SevError fails the scenario it is reported on.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}
