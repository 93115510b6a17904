package rbac

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

type Permission string

// Operations consulted by the role gate. There is no per-resource ownership
// check anywhere: an analyst who created an incident has no special rights
// over it.
const (
	PermDashboardView  Permission = "dashboard.view"
	PermIncidentsView  Permission = "incidents.view"
	PermIncidentsWrite Permission = "incidents.create"
	PermIncidentsDel   Permission = "incidents.delete"
	PermTicketsView    Permission = "tickets.view"
	PermDatasetsView   Permission = "datasets.view"
	PermAccountsManage Permission = "accounts.manage"
	PermImportsRun     Permission = "imports.run"
	PermSummaryView    Permission = "summary.view"
	PermAuditView      Permission = "audit.view"
)

const rbacModel = `
[request_definition]
r = sub, act

[policy_definition]
p = sub, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.act == p.act
`

// analystPerms is the static role→operation table for the base role; admin
// inherits it and adds the destructive/administrative operations.
var analystPerms = []Permission{
	PermDashboardView,
	PermIncidentsView,
	PermIncidentsWrite,
	PermTicketsView,
	PermDatasetsView,
}

var adminOnlyPerms = []Permission{
	PermIncidentsDel,
	PermAccountsManage,
	PermImportsRun,
	PermSummaryView,
	PermAuditView,
}

// Policy wraps a casbin enforcer built entirely in code; there is no policy
// file and the table never changes at runtime.
type Policy struct {
	enforcer *casbin.Enforcer
}

func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("rbac model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("rbac enforcer: %w", err)
	}
	for _, p := range analystPerms {
		if _, err := e.AddPolicy("analyst", string(p)); err != nil {
			return nil, err
		}
	}
	for _, p := range adminOnlyPerms {
		if _, err := e.AddPolicy("admin", string(p)); err != nil {
			return nil, err
		}
	}
	if _, err := e.AddGroupingPolicy("admin", "analyst"); err != nil {
		return nil, err
	}
	return &Policy{enforcer: e}, nil
}

func MustNewPolicy() *Policy {
	p, err := NewPolicy()
	if err != nil {
		panic(err)
	}
	return p
}

// Allowed reports whether any of the caller's roles grants the operation.
func (p *Policy) Allowed(roles []string, perm Permission) bool {
	if p == nil || p.enforcer == nil {
		return false
	}
	for _, role := range roles {
		ok, err := p.enforcer.Enforce(role, string(perm))
		if err == nil && ok {
			return true
		}
	}
	return false
}
