package domain

import "strings"

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
)

// ParseRole accepts any casing of ADMIN or CUSTOMER.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleCustomer:
		return RoleCustomer, true
	}
	return "", false
}

const (
	DefaultContactName  = "Unknown"
	DefaultContactValue = "N/A"
)

type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// WithDefaults fills blank contact fields with placeholders.
func (c Contact) WithDefaults() Contact {
	if strings.TrimSpace(c.Name) == "" {
		c.Name = DefaultContactName
	}
	if strings.TrimSpace(c.Email) == "" {
		c.Email = DefaultContactValue
	}
	if strings.TrimSpace(c.Phone) == "" {
		c.Phone = DefaultContactValue
	}
	if strings.TrimSpace(c.Address) == "" {
		c.Address = DefaultContactValue
	}
	return c
}

// HasEmail reports whether the contact carries a deliverable e-mail address.
func (c Contact) HasEmail() bool {
	return c.Email != "" && c.Email != DefaultContactValue
}

func (c Contact) HasPhone() bool {
	return c.Phone != "" && c.Phone != DefaultContactValue
}

type Account struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	Contact
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
