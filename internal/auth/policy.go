package auth

import (
	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
	"github.com/nimasrn/water-billing/internal/model"
)

// Paths are matched with keyMatch2 (":id" and "*" patterns), methods with
// an anchored regular expression.
const policyModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && regexMatch(r.act, p.act)
`

const (
	roleUser = "role:user"

	anyMethod = "^.*$"
	readOnly  = "^GET$"
	postOnly  = "^POST$"
)

func subject(r model.Role) string {
	return "role:" + string(r)
}

var rolePolicies = [][]string{
	{roleUser, "/logout", postOnly},
	{roleUser, "/user", readOnly},

	{subject(model.RoleCashier), "/kasir/*", postOnly},
	{subject(model.RoleCashier), "/admin/payments/recent", readOnly},

	{subject(model.RoleOperator), "/operator/*", postOnly},
	{subject(model.RoleOperator), "/admin/customers", "^(GET|POST)$"},
	{subject(model.RoleOperator), "/admin/customers/:id", "^(GET|PUT)$"},

	{subject(model.RoleAdmin), "/admin/*", anyMethod},
}

var roleInheritance = [][]string{
	{subject(model.RoleCashier), roleUser},
	{subject(model.RoleOperator), roleUser},
	{subject(model.RoleAdmin), subject(model.RoleOperator)},
	{subject(model.RoleAdmin), subject(model.RoleCashier)},
}

// Authorizer decides whether a role may call a route.
type Authorizer struct {
	enforcer *casbin.SyncedEnforcer
}

func NewAuthorizer() (*Authorizer, error) {
	m, err := casbinmodel.NewModelFromString(policyModel)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, err
	}
	if _, err := enforcer.AddPolicies(rolePolicies); err != nil {
		return nil, err
	}
	if _, err := enforcer.AddGroupingPolicies(roleInheritance); err != nil {
		return nil, err
	}
	return &Authorizer{enforcer: enforcer}, nil
}

// Allow reports whether role may call method on path.
func (a *Authorizer) Allow(role model.Role, path, method string) (bool, error) {
	if !role.Valid() {
		return false, nil
	}
	return a.enforcer.Enforce(subject(role), path, method)
}
