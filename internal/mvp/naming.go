package mvp

import "strings"

// DeriveFeatureName removes every occurrence of the role's PascalCase token,
// then of its lowercase token, from a simple class name. The result may be
// empty, e.g. for a class named exactly "Activity".
func DeriveFeatureName(simpleName string, role Role) string {
	if role == RoleNone {
		return simpleName
	}
	name := strings.ReplaceAll(simpleName, role.Token(), "")
	return strings.ReplaceAll(name, role.LowerToken(), "")
}
