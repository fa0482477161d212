package model

type Principal struct {
	UserID string
	Email  string
	Role   string
}

// Identity is the name printed in report footers.
func (p Principal) Identity() string {
	if p.Email != "" {
		return p.Email
	}
	return p.UserID
}
