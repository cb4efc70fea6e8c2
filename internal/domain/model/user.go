package model

// User roles.
const (
	RoleAdministrator = "Administrator"
	RoleAnalyst       = "Analyst"
	RoleViewer        = "Viewer"
)

// User is a console account.
type User struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	LastLogin Timestamp `json:"lastLogin"`
	Status    string    `json:"status"`
}

// SearchFields returns full name, username and email.
func (u User) SearchFields() []string {
	return []string{u.FullName, u.Username, u.Email}
}
