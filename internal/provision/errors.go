package provision

import "fmt"

// ConfigurationError means the run cannot authenticate itself: the execution
// token was never injected. Raised before any network work.
type ConfigurationError struct {
	Missing string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration: %s", e.Missing)
}

// ProvisioningError means the dispatcher rejected the storage request.
type ProvisioningError struct {
	StatusCode int
	Body       string
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("storage provisioning failed with status %d: %s", e.StatusCode, e.Body)
}

// ProtocolError means the dispatcher answered with a body the client cannot
// use (not JSON, or no volume name in it).
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed provisioning response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed provisioning response: %s", e.Reason)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}
