package identity

import "errors"

var ErrUnknownRole = errors.New("identity: unknown role")

// Role is a closed enum; access control never compares raw strings.
type Role string

const (
	RoleCustomer       Role = "customer"
	RoleSupportAgent   Role = "support-agent"
	RoleSalesManager   Role = "sales-manager"
	RoleProductManager Role = "product-manager"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleSupportAgent, RoleSalesManager, RoleProductManager:
		return Role(s), nil
	}
	return "", ErrUnknownRole
}

type Permission string

const (
	PermManageOrders   Permission = "orders:manage"
	PermViewInvoices   Permission = "invoices:view"
	PermViewRevenue    Permission = "revenue:view"
	PermIssueRefund    Permission = "refunds:issue"
	PermResolveRefunds Permission = "refunds:resolve"
)

// permissions is the full role/permission table. Roles not listed for a
// permission are denied.
var permissions = map[Permission]map[Role]bool{
	PermManageOrders:   {RoleProductManager: true},
	PermViewInvoices:   {RoleSalesManager: true, RoleProductManager: true},
	PermViewRevenue:    {RoleSalesManager: true},
	PermIssueRefund:    {RoleSalesManager: true},
	PermResolveRefunds: {RoleSalesManager: true},
}

func (r Role) Can(p Permission) bool {
	return permissions[p][r]
}

// Identity is the verified caller extracted from a bearer token.
type Identity struct {
	UserID string
	Name   string
	Email  string
	Role   Role
}
