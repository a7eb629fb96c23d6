package tailoring

import "fmt"

// APICallError represents a failure of the generation backend
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ContractError reports an engine output that breaks the tailoring contract
type ContractError struct {
	Engine string
	Reason string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s engine broke the output contract: %s", e.Engine, e.Reason)
}

// StubError is a failure of the deterministic engine. There is no further
// fallback, so it is always surfaced.
type StubError struct {
	Cause any
}

func (e *StubError) Error() string {
	return fmt.Sprintf("stub tailoring failed: %v", e.Cause)
}

// InputError rejects a request before any engine runs
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
