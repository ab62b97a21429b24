package payhub

// Outcome is the classified result of forwarding one instruction.
type Outcome struct {
	InstructionID int
	Success       bool
	ErrorText     string
}

// Report aggregates one dispatch invocation.
// Invariant: 0 <= Success <= Total.
type Report struct {
	Total   int `json:"total"`
	Success int `json:"success"`
}
