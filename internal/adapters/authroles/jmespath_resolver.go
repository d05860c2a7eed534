package authroles

import (
	"encoding/json"
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
	domainauth "github.com/target/event-planner/internal/domain/auth"
	"github.com/target/event-planner/internal/ports"
)

// DefaultRolesPath selects the roles of the user's first registration.
const DefaultRolesPath = "registrations[0].roles"

var _ ports.RoleResolver = (*JMESPathResolver)(nil)

// JMESPathResolver evaluates a JMESPath expression against the user profile
// (in its JSON shape) to obtain the role set.
type JMESPathResolver struct {
	expr string
}

// NewJMESPathResolver validates expr and returns a resolver for it.
// An empty expr uses DefaultRolesPath.
func NewJMESPathResolver(expr string) (*JMESPathResolver, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		expr = DefaultRolesPath
	}
	if _, err := jmespath.Compile(expr); err != nil {
		return nil, fmt.Errorf("compile roles path %q: %w", expr, err)
	}
	return &JMESPathResolver{expr: expr}, nil
}

// Roles returns the string roles selected by the expression.
// ok is false when the expression selects nothing or something that is not a list.
func (r *JMESPathResolver) Roles(user domainauth.User) ([]string, bool) {
	doc, err := toDocument(user)
	if err != nil {
		return nil, false
	}
	res, err := jmespath.Search(r.expr, doc)
	if err != nil || res == nil {
		return nil, false
	}
	items, isList := res.([]any)
	if !isList {
		return nil, false
	}
	roles := make([]string, 0, len(items))
	for _, it := range items {
		if s, isString := it.(string); isString {
			roles = append(roles, s)
		}
	}
	return roles, true
}

// toDocument converts the user to the generic map form JMESPath operates on.
func toDocument(user domainauth.User) (any, error) {
	b, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
