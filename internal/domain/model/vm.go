package model

// Virtual machine power states.
const (
	VMStatusRunning = "Running"
	VMStatusStopped = "Stopped"
)

// VirtualMachine is an analysis guest managed by the sandbox.
type VirtualMachine struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OSType    string    `json:"osType"`
	Status    string    `json:"status"`
	IPAddress string    `json:"ipAddress"`
	CreatedAt Timestamp `json:"createdDate"`
	LastUsed  Timestamp `json:"lastUsed"`
}

// SearchFields returns the machine name and OS type.
func (v VirtualMachine) SearchFields() []string {
	return []string{v.Name, v.OSType}
}
