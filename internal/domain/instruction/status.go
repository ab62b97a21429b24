package instruction

// Status is the short persisted status code of an instruction.
type Status string

const (
	StatusDraft           Status = "D"
	StatusPending         Status = "P"
	StatusValidated       Status = "V"
	StatusReadyToTransfer Status = "TTB"
	StatusCompleted       Status = "C"
	StatusRejected        Status = "REJ"
)

// Known reports whether the status is one of the closed set.
func (s Status) Known() bool {
	switch s {
	case StatusDraft, StatusPending, StatusValidated,
		StatusReadyToTransfer, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// DisplayName returns the operator-facing name of the status.
func (s Status) DisplayName() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusPending:
		return "Pending"
	case StatusValidated:
		return "Validated"
	case StatusReadyToTransfer:
		return "To Be Transferred"
	case StatusCompleted:
		return "Completed"
	case StatusRejected:
		return "Rejected"
	}
	return "Unknown"
}
