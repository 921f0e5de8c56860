// internal/status/snapshot.go
package status

// Snapshot is the health verdict attached to one iteration record.
// It contains no logic and no memory of other iterations.
type Snapshot struct {
	Health        uint16
	LastErrorCode int
	StopsReached  int
	ValidChannels int
}

// OK reports whether the iteration produced complete data.
func (s Snapshot) OK() bool {
	return s.Health == HealthOK
}

func (s Snapshot) String() string {
	return HealthName(s.Health)
}
