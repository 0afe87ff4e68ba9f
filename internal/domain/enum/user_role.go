package enum

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// UserRole is the job role of a staff member
type UserRole string

const (
	UserRoleAdmin    UserRole = "ADMIN"
	UserRoleManager  UserRole = "MANAGER"
	UserRoleSalesRep UserRole = "SALES_REP"
)

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleManager, UserRoleSalesRep:
		return true
	}
	return false
}

// ParseUserRole accepts any casing, e.g. "sales_rep"
func ParseUserRole(str string) (UserRole, error) {
	r := UserRole(strings.ToUpper(strings.TrimSpace(str)))
	if !r.IsValid() {
		return "", fmt.Errorf("unknown user role %q", str)
	}
	return r, nil
}

func (r UserRole) Value() (driver.Value, error) {
	return string(r), nil
}

func (r *UserRole) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*r = UserRoleSalesRep
	case string:
		*r = UserRole(v)
	case []byte:
		*r = UserRole(v)
	default:
		return fmt.Errorf("cannot scan %T into UserRole", value)
	}
	return nil
}
