package enums

import "fmt"

// ApplicationStatus captures the store-application review workflow.
// Approved and rejected are terminal.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

var validApplicationStatuses = []ApplicationStatus{
	ApplicationStatusPending,
	ApplicationStatusApproved,
	ApplicationStatusRejected,
}

// String implements fmt.Stringer.
func (s ApplicationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ApplicationStatus.
func (s ApplicationStatus) IsValid() bool {
	for _, candidate := range validApplicationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseApplicationStatus converts raw input into an ApplicationStatus.
func ParseApplicationStatus(value string) (ApplicationStatus, error) {
	for _, candidate := range validApplicationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid application status %q", value)
}
