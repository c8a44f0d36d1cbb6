package permission

import (
	"fmt"
	"net/http"
	"path"
	"slices"
	"strings"
)

const subtreeSuffix = "/**"

// Rule описывает требования к маршруту.
// Pattern либо точный путь, либо префикс с суффиксом "/**" для поддерева.
// Пустой Methods означает любой метод. Roles и Permissions проверяются
// по принципу "любой из", и если оба заданы, должны выполниться оба.
type Rule struct {
	Pattern     string       `yaml:"pattern"`
	Methods     []string     `yaml:"methods"`
	Roles       []Role       `yaml:"roles"`
	Permissions []Permission `yaml:"permissions"`
	Public      bool         `yaml:"public"`
}

func (r Rule) matches(method, p string) bool {
	if len(r.Methods) > 0 && !slices.Contains(r.Methods, method) {
		return false
	}
	if prefix, ok := strings.CutSuffix(r.Pattern, subtreeSuffix); ok {
		return p == prefix || strings.HasPrefix(p, prefix+"/")
	}
	return p == r.Pattern
}

// Policy is an ordered, read-only table of route rules. The first matching
// rule wins; a request that matches no rule only needs to be authenticated.
type Policy struct {
	model *Model
	rules []Rule
}

// NewPolicy validates rules against model and returns the policy.
func NewPolicy(model *Model, rules []Rule) (*Policy, error) {
	copied := make([]Rule, 0, len(rules))
	for i, r := range rules {
		if !strings.HasPrefix(r.Pattern, "/") {
			return nil, fmt.Errorf("rule %d: pattern %q must start with /", i, r.Pattern)
		}
		methods := make([]string, 0, len(r.Methods))
		for _, m := range r.Methods {
			methods = append(methods, strings.ToUpper(m))
		}
		r.Methods = methods
		for _, role := range r.Roles {
			if _, err := model.ParseRole(string(role)); err != nil {
				return nil, fmt.Errorf("rule %d: %w", i, err)
			}
		}
		for _, p := range r.Permissions {
			if _, err := ParsePermission(string(p)); err != nil {
				return nil, fmt.Errorf("rule %d: %w", i, err)
			}
		}
		if r.Public && (len(r.Roles) > 0 || len(r.Permissions) > 0) {
			return nil, fmt.Errorf("rule %d: public rule cannot require roles or permissions", i)
		}
		copied = append(copied, r)
	}
	return &Policy{model: model, rules: copied}, nil
}

// Match returns the first rule matching the request. The path is cleaned
// first so that dot segments cannot step out of a protected subtree.
func (p *Policy) Match(method, requestPath string) Rule {
	cleaned := path.Clean("/" + requestPath)
	for _, r := range p.rules {
		if r.matches(method, cleaned) {
			return r
		}
	}
	return Rule{Pattern: cleaned}
}

// Authorize reports whether a user with role satisfies rule.
func (p *Policy) Authorize(rule Rule, role Role) bool {
	if rule.Public {
		return true
	}
	if len(rule.Roles) > 0 && !p.model.HasRole(role, rule.Roles) {
		return false
	}
	if len(rule.Permissions) > 0 && !p.model.HasAnyPermission(role, rule.Permissions) {
		return false
	}
	return true
}

// DefaultRules returns the built-in route table for an API mounted at base.
func DefaultRules(base string) []Rule {
	base = strings.TrimSuffix(base, "/")

	rules := []Rule{
		{Pattern: base + "/auth/**", Public: true},
		{Pattern: base + "/health", Methods: []string{http.MethodGet}, Public: true},
		{Pattern: base + "/playground/**", Roles: []Role{RoleAdmin, RoleManager, RoleUser}},
	}

	actions := []struct {
		method  string
		admin   Permission
		manager Permission
	}{
		{http.MethodGet, AdminRead, ManagerRead},
		{http.MethodPost, AdminCreate, ManagerCreate},
		{http.MethodPut, AdminUpdate, ManagerUpdate},
		{http.MethodDelete, AdminDelete, ManagerDelete},
	}
	for _, a := range actions {
		rules = append(rules,
			Rule{
				Pattern:     base + "/management/**",
				Methods:     []string{a.method},
				Roles:       []Role{RoleAdmin, RoleManager},
				Permissions: []Permission{a.manager},
			},
			Rule{
				Pattern:     base + "/admin/**",
				Methods:     []string{a.method},
				Roles:       []Role{RoleAdmin},
				Permissions: []Permission{a.admin},
			},
		)
	}

	// прочие методы требуют хотя бы роль
	rules = append(rules,
		Rule{Pattern: base + "/management/**", Roles: []Role{RoleAdmin, RoleManager}},
		Rule{Pattern: base + "/admin/**", Roles: []Role{RoleAdmin}},
	)
	return rules
}
