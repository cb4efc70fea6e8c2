package model

// TaskCategory is what was submitted for analysis.
type TaskCategory string

// Task categories.
const (
	TaskCategoryFile TaskCategory = "File"
	TaskCategoryURL  TaskCategory = "URL"
)

// TaskStatus is the analysis lifecycle state of a task.
type TaskStatus string

// Task statuses. Running, Pending and Analyzing are active; Completed and
// Failed appear in the history.
const (
	TaskStatusRunning   TaskStatus = "Running"
	TaskStatusPending   TaskStatus = "Pending"
	TaskStatusAnalyzing TaskStatus = "Analyzing"
	TaskStatusCompleted TaskStatus = "Completed"
	TaskStatusFailed    TaskStatus = "Failed"
)

// Incident types assigned by analysis.
const (
	IncidentUnknown    = "Unknown"
	IncidentNone       = "None"
	IncidentMalware    = "Malware"
	IncidentRansomware = "Ransomware"
	IncidentPhishing   = "Phishing"
)

// Task is one sandbox analysis of a file or URL.
type Task struct {
	ID string `json:"id"`
	// FileName is the submitted file name, or the URL for URL tasks.
	FileName     string       `json:"filename"`
	SHA256       string       `json:"sha256"`
	MD5          string       `json:"md5,omitempty"`
	Category     TaskCategory `json:"category"`
	Status       TaskStatus   `json:"status"`
	IncidentType string       `json:"incidentType"`
	FileSize     string       `json:"fileSize"`
	CreatedAt    Timestamp    `json:"createdTime"`
	CompletedAt  Timestamp    `json:"completedTime"`
}

// SearchFields returns the fields matched by free-text search: the file
// name (or URL) and the SHA-256.
func (t Task) SearchFields() []string {
	return []string{t.FileName, t.SHA256}
}

// Incident returns the incident type, or IncidentUnknown when unset.
func (t Task) Incident() string {
	if t.IncidentType == "" {
		return IncidentUnknown
	}
	return t.IncidentType
}
