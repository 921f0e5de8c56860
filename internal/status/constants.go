// internal/status/constants.go
package status

// Iteration health codes.
// These values are persisted with every record and MUST NOT be renumbered.

// HealthUnknown represents an iteration that never ran.
const HealthUnknown uint16 = 0

// HealthOK represents a full cycle with every gauge channel read.
const HealthOK uint16 = 1

// HealthGaugePartial represents a full cycle where some channels had no valid sample.
const HealthGaugePartial uint16 = 2

// HealthGaugeError represents a full cycle whose gauge read failed outright.
const HealthGaugeError uint16 = 3

// HealthMotionError represents a cycle aborted by a controller failure.
const HealthMotionError uint16 = 4

// HealthMotionTimeout represents a cycle aborted waiting for motion to complete.
const HealthMotionTimeout uint16 = 5

// HealthAborted represents an iteration cut short by cancellation.
const HealthAborted uint16 = 6

// ---- ERROR CODES ----

// CodeNone is reported when there was no error.
const CodeNone = 0

// CodeUnclassified is reported for errors that carry no code of their own.
const CodeUnclassified = -1

var healthNames = map[uint16]string{
	HealthUnknown:       "unknown",
	HealthOK:            "ok",
	HealthGaugePartial:  "gauge_partial",
	HealthGaugeError:    "gauge_error",
	HealthMotionError:   "motion_error",
	HealthMotionTimeout: "motion_timeout",
	HealthAborted:       "aborted",
}

// HealthName returns the stable text form of a health code.
func HealthName(h uint16) string {
	if s, ok := healthNames[h]; ok {
		return s
	}
	return "unknown"
}
