package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfig marks failures in operator supplied configuration: unreadable keypairs, bad flags or
// invalid keys. Nothing has been sent to the cluster when it is returned.
var ErrConfig = errors.New("config error")

type Step string

const (
	StepCreateAccount Step = "Create account"
	StepInitialize    Step = "Initialize"
	StepWrite         Step = "Write"
	StepSetAuthority  Step = "Set authority"
	StepClose         Step = "Close"
)

func (s Step) String() string {
	return string(s)
}

// label is the lowercase, underscore separated form used for metric labels.
func (s Step) label() string {
	return strings.ReplaceAll(strings.ToLower(string(s)), " ", "_")
}

// SubmissionError is returned when the cluster rejects or never confirms the transaction of a
// lifecycle step.
type SubmissionError struct {
	Step Step
	Err  error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("error sending %s transaction: %v", strings.ToLower(string(e.Step)), e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
