package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement is an external binary takeslice shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// Hint tells the operator how to point takeslice at the binary.
	Hint     string
	Optional bool
}

// Status is the outcome of resolving one Requirement.
type Status struct {
	Requirement
	Path      string
	Available bool
	Detail    string
}

// Check resolves req on PATH (or as a path when it contains a separator).
func Check(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		if req.Hint != "" {
			status.Detail += "; " + req.Hint
		}
		return status
	}
	status.Path = resolved
	status.Available = true
	return status
}

// CheckBinaries resolves every requirement in order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, Check(req))
	}
	return results
}

// MissingRequired returns the unavailable, non-optional dependencies.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
