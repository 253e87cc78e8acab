package models

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account is the already-authenticated identity handed over by the auth
// collaborator. It is consumed, never persisted, by this service.
type Account struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func (a Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
