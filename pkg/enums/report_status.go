package enums

import "fmt"

// ReportStatus tracks the triage state of a patron report.
type ReportStatus string

const (
	ReportStatusNew      ReportStatus = "new"
	ReportStatusReviewed ReportStatus = "reviewed"
	ReportStatusResolved ReportStatus = "resolved"
)

var validReportStatuses = []ReportStatus{
	ReportStatusNew,
	ReportStatusReviewed,
	ReportStatusResolved,
}

// IsValid reports whether the value matches the canonical report status enum.
func (s ReportStatus) IsValid() bool {
	for _, candidate := range validReportStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseReportStatus converts the raw string to ReportStatus.
func ParseReportStatus(value string) (ReportStatus, error) {
	for _, candidate := range validReportStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid report status %q", value)
}
