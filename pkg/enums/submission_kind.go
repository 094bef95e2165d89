package enums

import "fmt"

// SubmissionKind describes the allowed values for the `kind` column in submissions.
type SubmissionKind string

const (
	SubmissionKindImage SubmissionKind = "image"
	SubmissionKindText  SubmissionKind = "text"
	SubmissionKindGift  SubmissionKind = "gift"
)

var validSubmissionKinds = []SubmissionKind{
	SubmissionKindImage,
	SubmissionKindText,
	SubmissionKindGift,
}

// IsValid reports whether the value matches the canonical submission kind enum.
func (k SubmissionKind) IsValid() bool {
	for _, candidate := range validSubmissionKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseSubmissionKind converts the raw string to SubmissionKind.
func ParseSubmissionKind(value string) (SubmissionKind, error) {
	for _, candidate := range validSubmissionKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid submission kind %q", value)
}
