package auth

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/rl1809/inventory-tracker/internal/core/domain"
)

// Credential configures one fixed account.
type Credential struct {
	Username    string
	DisplayName string
	Role        domain.Role
	Password    string
}

type account struct {
	displayName string
	role        domain.Role
	hash        []byte
}

// StaticAuthenticator checks credentials against a fixed set of accounts
// held as bcrypt hashes. Usernames are matched case-insensitively.
type StaticAuthenticator struct {
	accounts map[string]account
}

func NewStaticAuthenticator(creds ...Credential) (*StaticAuthenticator, error) {
	accounts := make(map[string]account, len(creds))
	for _, c := range creds {
		if c.Username == "" || c.Password == "" || !c.Role.Valid() {
			return nil, errors.Errorf("invalid credential for %q", c.Username)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, errors.Wrapf(err, "hash password for %s", c.Username)
		}
		name := c.DisplayName
		if name == "" {
			name = c.Username
		}
		accounts[strings.ToLower(c.Username)] = account{displayName: name, role: c.Role, hash: hash}
	}
	return &StaticAuthenticator{accounts: accounts}, nil
}

// DefaultCredentials are the two built-in roles with the given passwords.
func DefaultCredentials(adminPassword, productionPassword string) []Credential {
	return []Credential{
		{Username: "admin", DisplayName: "Admin", Role: domain.RoleAdmin, Password: adminPassword},
		{Username: "production", DisplayName: "Production", Role: domain.RoleProduction, Password: productionPassword},
	}
}

func (a *StaticAuthenticator) Authenticate(_ context.Context, username, password string) (domain.Session, error) {
	acc, ok := a.accounts[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return domain.Anonymous(), domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return domain.Anonymous(), domain.ErrInvalidCredentials
	}
	return domain.Authenticated(acc.displayName, acc.role), nil
}
