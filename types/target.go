package types

// TargetStatus represents the state of a simulated host.
type TargetStatus string

const (
	// TargetOnline is a reachable host that has not been compromised.
	TargetOnline TargetStatus = "online"

	// TargetCompromised is a host the simulated attacker controls.
	TargetCompromised TargetStatus = "compromised"

	// TargetOffline is an unreachable host.
	TargetOffline TargetStatus = "offline"
)

// String returns the string representation of the target status.
func (s TargetStatus) String() string {
	return string(s)
}

// IsValid returns true if the target status is a recognized value.
func (s TargetStatus) IsValid() bool {
	switch s {
	case TargetOnline, TargetCompromised, TargetOffline:
		return true
	default:
		return false
	}
}

// ServiceStatus represents the port state of a service.
type ServiceStatus string

const (
	ServiceOpen     ServiceStatus = "open"
	ServiceClosed   ServiceStatus = "closed"
	ServiceFiltered ServiceStatus = "filtered"
)

// IsValid returns true if the service status is a recognized value.
func (s ServiceStatus) IsValid() bool {
	switch s {
	case ServiceOpen, ServiceClosed, ServiceFiltered:
		return true
	default:
		return false
	}
}

// Service is a network service exposed by a target.
type Service struct {
	Port    int           `json:"port" yaml:"port"`
	Name    string        `json:"name" yaml:"name"`
	Version string        `json:"version" yaml:"version"`
	Status  ServiceStatus `json:"status" yaml:"status"`
}

// Vulnerability is a known weakness of a target.
type Vulnerability struct {
	ID          string   `json:"id" yaml:"id"`
	CVE         string   `json:"cve" yaml:"cve"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Description string   `json:"description" yaml:"description"`
}

// Target is a simulated host in the lab network.
type Target struct {
	// ID is a unique identifier for the target.
	ID string `json:"id" yaml:"id"`

	// Name is a human-readable name for the target.
	Name string `json:"name" yaml:"name"`

	// IP is the target address. It is a label only; nothing connects to it.
	IP string `json:"ip" yaml:"ip"`

	// OS is the operating system label.
	OS string `json:"os" yaml:"os"`

	// Services lists exposed services in display order.
	Services []Service `json:"services" yaml:"services"`

	// Vulnerabilities lists known weaknesses in display order.
	Vulnerabilities []Vulnerability `json:"vulnerabilities" yaml:"vulnerabilities"`

	// Status is the current state of the host.
	Status TargetStatus `json:"status" yaml:"status"`
}

// Validate checks if the Target has all required fields.
func (t *Target) Validate() error {
	if t.ID == "" {
		return &ValidationError{Field: "ID", Message: "target ID is required"}
	}

	if t.Name == "" {
		return &ValidationError{Field: "Name", Message: "target name is required"}
	}

	if !t.Status.IsValid() {
		return &ValidationError{Field: "Status", Message: "invalid target status " + string(t.Status)}
	}

	for _, svc := range t.Services {
		if svc.Port <= 0 || svc.Port > 65535 {
			return &ValidationError{Field: "Services", Message: "service port out of range"}
		}
		if !svc.Status.IsValid() {
			return &ValidationError{Field: "Services", Message: "invalid service status " + string(svc.Status)}
		}
	}

	for _, v := range t.Vulnerabilities {
		if v.CVE == "" {
			return &ValidationError{Field: "Vulnerabilities", Message: "vulnerability CVE is required"}
		}
		if !v.Severity.IsValid() {
			return &ValidationError{Field: "Vulnerabilities", Message: "invalid severity " + string(v.Severity)}
		}
	}

	return nil
}

// FirstExploitable returns the first vulnerability with high or critical
// severity, in list order.
func (t *Target) FirstExploitable() (Vulnerability, bool) {
	for _, v := range t.Vulnerabilities {
		if v.Severity.IsExploitable() {
			return v, true
		}
	}
	return Vulnerability{}, false
}

// Clone returns a deep copy of the target.
func (t Target) Clone() Target {
	out := t
	if t.Services != nil {
		out.Services = make([]Service, len(t.Services))
		copy(out.Services, t.Services)
	}
	if t.Vulnerabilities != nil {
		out.Vulnerabilities = make([]Vulnerability, len(t.Vulnerabilities))
		copy(out.Vulnerabilities, t.Vulnerabilities)
	}
	return out
}

// ValidationError represents a validation failure for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
