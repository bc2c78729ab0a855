package rbac

import (
	"context"
	"strings"
)

// Roles carried in the token "role" claim.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Permissions guarded by the HTTP layer.
const (
	TestCreate      = "test:create"
	TestView        = "test:view"
	TestUpdate      = "test:update"
	TestDelete      = "test:delete"
	AttemptStart    = "attempt:start"
	AttemptSubmit   = "attempt:submit"
	AttemptViewOwn  = "attempt:view-own"
	AttemptViewAll  = "attempt:view-all"
	AttemptDelete   = "attempt:delete"
	EligibilityView = "eligibility:view"
)

// grants is one role's compiled permission list.
type grants struct {
	all      bool
	exact    map[string]struct{}
	prefixes []string
}

// Checker answers permission queries against a role table. Entries are
// exact names, "*" for everything, or a "prefix*" wildcard.
type Checker struct {
	roles map[string]grants
}

func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	c := &Checker{roles: make(map[string]grants, len(rp))}
	for role, perms := range rp {
		g := grants{exact: map[string]struct{}{}}
		for _, p := range perms {
			switch {
			case p == "*":
				g.all = true
			case strings.HasSuffix(p, "*"):
				g.prefixes = append(g.prefixes, strings.TrimSuffix(p, "*"))
			default:
				g.exact[p] = struct{}{}
			}
		}
		c.roles[role] = g
	}
	return c
}

func (c *Checker) Has(role, perm string) bool {
	g, ok := c.roles[role]
	if !ok {
		return false
	}
	if g.all {
		return true
	}
	if _, ok := g.exact[perm]; ok {
		return true
	}
	for _, p := range g.prefixes {
		if strings.HasPrefix(perm, p) {
			return true
		}
	}
	return false
}

func (c *Checker) Any(role string, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

// ---- role in context ----

type ctxKey struct{}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ctxKey{}, role)
}

func RoleFromContext(ctx context.Context) string {
	s, _ := ctx.Value(ctxKey{}).(string)
	return s
}
