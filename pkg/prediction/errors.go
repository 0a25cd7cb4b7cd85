package prediction

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIncompleteState reports a form state that cannot yield a record.
var ErrIncompleteState = errors.New("prediction: incomplete state")

// ContractIssue is a single contract violation found while validating a
// record or a predictor response.
type ContractIssue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// IncompleteStateError lists why a record could not be built. It matches
// ErrIncompleteState with errors.Is.
type IncompleteStateError struct {
	Missing []string
	Issues  []ContractIssue
}

func (e *IncompleteStateError) Error() string {
	if e == nil {
		return ""
	}
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	for _, issue := range e.Issues {
		if issue.Field != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
			continue
		}
		parts = append(parts, issue.Message)
	}
	if len(parts) == 0 {
		return ErrIncompleteState.Error()
	}
	return ErrIncompleteState.Error() + ": " + strings.Join(parts, "; ")
}

func (e *IncompleteStateError) Is(target error) bool {
	return target == ErrIncompleteState
}
