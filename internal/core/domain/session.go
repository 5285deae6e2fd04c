package domain

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleProduction Role = "production"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleProduction
}

// Session identifies the actor behind a request. The zero value is the
// anonymous session.
type Session struct {
	Username string
	Role     Role
}

func Anonymous() Session {
	return Session{}
}

func Authenticated(username string, role Role) Session {
	return Session{Username: username, Role: role}
}

func (s Session) IsAuthenticated() bool {
	return s.Username != "" && s.Role.Valid()
}

func (s Session) RequireAuthenticated() error {
	if !s.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

func (s Session) RequireRole(role Role) error {
	if err := s.RequireAuthenticated(); err != nil {
		return err
	}
	if s.Role != role {
		return ErrNotAuthorized
	}
	return nil
}
