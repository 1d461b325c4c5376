// Package config handles application configuration loading and validation.
package config

// Default configuration values. Domain settings (bucket names, credentials,
// client selection) deliberately default to empty strings: a missing value
// is handed to the adapters as-is, never treated as a load error.
const (
	DefaultClient      = ""
	DefaultVersionFile = ""
	DefaultProvider    = ""
	DefaultACL         = ""
	DefaultRegistryKey = ""

	DefaultMetricsEnabled        = false
	DefaultMetricsPushgatewayURL = ""

	DefaultAppriseEnabled = false
	DefaultAppriseURL     = ""
	DefaultAppriseKey     = ""
	DefaultAppriseNotify  = NotifyError

	DefaultLogLevel     = "info"
	DefaultLogMaxSizeMB = 10
)

// NotifyLevel represents when to send notifications.
type NotifyLevel string

const (
	// NotifyError sends notifications only on failed runs.
	NotifyError NotifyLevel = "error"
	// NotifyAlways sends notifications on every run that transfers data.
	NotifyAlways NotifyLevel = "always"
)

// IsValid returns true if the notify level is valid.
func (n NotifyLevel) IsValid() bool {
	switch n {
	case NotifyError, NotifyAlways:
		return true
	default:
		return false
	}
}

// String returns the string representation of the notify level.
func (n NotifyLevel) String() string {
	return string(n)
}
