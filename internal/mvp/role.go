package mvp

import (
	"github.com/toyz/mvpgen/internal/javasrc"
)

// Role is the kind of UI controller a class is
type Role int

const (
	RoleNone Role = iota
	RoleActivity
	RoleFragment
)

// maxAncestorDepth bounds the ancestor walk for pathological hierarchies
const maxAncestorDepth = 64

// String returns the role name
func (r Role) String() string {
	switch r {
	case RoleActivity:
		return "Activity"
	case RoleFragment:
		return "Fragment"
	default:
		return "None"
	}
}

// Token returns the PascalCase token the role contributes to class names
func (r Role) Token() string {
	if r == RoleNone {
		return ""
	}
	return r.String()
}

// LowerToken returns the lowercase form of Token
func (r Role) LowerToken() string {
	switch r {
	case RoleActivity:
		return "activity"
	case RoleFragment:
		return "fragment"
	default:
		return ""
	}
}

// Hierarchy answers direct-supertype queries
type Hierarchy interface {
	SuperOf(t javasrc.TypeRef) (javasrc.TypeRef, bool)
}

// Classify walks from super towards the root, one supertype at a time, and
// returns the first role whose simple name matches. Cycles and chains longer
// than maxAncestorDepth end the walk.
func Classify(h Hierarchy, super javasrc.TypeRef) Role {
	for _, ref := range AncestorChain(h, super) {
		switch ref.SimpleName() {
		case "Activity":
			return RoleActivity
		case "Fragment":
			return RoleFragment
		}
	}
	return RoleNone
}

// ClassifyClass classifies a declaration by its superclass
func ClassifyClass(h Hierarchy, c *javasrc.Class) Role {
	if c == nil || c.Super == nil {
		return RoleNone
	}
	return Classify(h, *c.Super)
}

// AncestorChain returns super followed by its supertypes, nearest first
func AncestorChain(h Hierarchy, super javasrc.TypeRef) []javasrc.TypeRef {
	if super.Name == "" {
		return nil
	}
	chain := []javasrc.TypeRef{super}
	visited := map[string]bool{super.Name: true}
	current := super
	for len(chain) < maxAncestorDepth {
		next, ok := h.SuperOf(current)
		if !ok || next.Name == "" || visited[next.Name] {
			break
		}
		visited[next.Name] = true
		chain = append(chain, next)
		current = next
	}
	return chain
}
