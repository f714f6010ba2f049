package mvp

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toyz/mvpgen/internal/javasrc"
)

// mapHierarchy is a Hierarchy backed by a name -> super map
type mapHierarchy map[string]string

func (m mapHierarchy) SuperOf(t javasrc.TypeRef) (javasrc.TypeRef, bool) {
	super, ok := m[t.Name]
	if !ok {
		return javasrc.TypeRef{}, false
	}
	return javasrc.TypeRef{Name: super}, true
}

func ref(name string) javasrc.TypeRef {
	return javasrc.TypeRef{Name: name}
}

func TestClassify(t *testing.T) {
	h := mapHierarchy{
		"com.app.base.BaseActivity":                "androidx.appcompat.app.AppCompatActivity",
		"androidx.appcompat.app.AppCompatActivity": "android.app.Activity",
		"com.app.base.BaseFragment":                "androidx.fragment.app.Fragment",
		"com.app.Plain":                            "java.lang.Object",
		// cycles terminate
		"a.A": "a.B",
		"a.B": "a.A",
	}

	tests := []struct {
		name  string
		super string
		want  Role
	}{
		{"direct activity", "android.app.Activity", RoleActivity},
		{"indirect activity", "com.app.base.BaseActivity", RoleActivity},
		{"fragment", "com.app.base.BaseFragment", RoleFragment},
		{"simple fragment name", "Fragment", RoleFragment},
		{"plain class", "com.app.Plain", RoleNone},
		{"cycle", "a.A", RoleNone},
		{"no super", "", RoleNone},
		// the walk compares whole simple names, not suffixes
		{"suffix only", "AppCompatActivity", RoleNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(h, ref(tt.super)))
		})
	}
}

func TestClassifyBoundsDeepChains(t *testing.T) {
	h := make(mapHierarchy)
	for i := 0; i < 200; i++ {
		h[fmt.Sprintf("c%d", i)] = fmt.Sprintf("c%d", i+1)
	}
	h["c150"] = "Activity"

	chain := AncestorChain(h, ref("c0"))
	assert.Len(t, chain, maxAncestorDepth)
	assert.Equal(t, RoleNone, Classify(h, ref("c0")), "roles past the depth bound are not seen")
	assert.Equal(t, RoleActivity, Classify(h, ref("c100")))
}

func TestClassifyClass(t *testing.T) {
	h := mapHierarchy{}
	assert.Equal(t, RoleNone, ClassifyClass(h, nil))
	assert.Equal(t, RoleNone, ClassifyClass(h, &javasrc.Class{Name: "A"}))
	super := ref("Activity")
	assert.Equal(t, RoleActivity, ClassifyClass(h, &javasrc.Class{Name: "A", Super: &super}))
}

func TestRoleTokens(t *testing.T) {
	assert.Equal(t, "None", RoleNone.String())
	assert.Equal(t, "Activity", RoleActivity.Token())
	assert.Equal(t, "fragment", RoleFragment.LowerToken())
	assert.Empty(t, RoleNone.Token())
}

func TestDeriveFeatureName(t *testing.T) {
	tests := []struct {
		class string
		role  Role
		want  string
	}{
		{"UserProfileActivity", RoleActivity, "UserProfile"},
		{"DetailFragment", RoleFragment, "Detail"},
		{"ActivityListActivity", RoleActivity, "List"},
		{"Activity", RoleActivity, ""},
		{"mainactivityScreen", RoleActivity, "mainScreen"},
		{"LoginActivity", RoleFragment, "LoginActivity"},
		{"Anything", RoleNone, "Anything"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveFeatureName(tt.class, tt.role), tt.class)
	}
}

func TestClassifyNearestRoleWins(t *testing.T) {
	h := mapHierarchy{
		"x.Base":     "x.Activity",
		"x.Activity": "x.Fragment",
		"y.Base":     "y.Fragment",
		"y.Fragment": "android.app.Activity",
		"z.Base":     "z.Plain",
		"z.Plain":    "z.Activity",
	}
	assert.Equal(t, RoleActivity, Classify(h, ref("x.Base")))
	assert.Equal(t, RoleFragment, Classify(h, ref("y.Base")), "an Activity further up does not override a nearer Fragment")
	assert.Equal(t, RoleActivity, Classify(h, ref("z.Base")))
}
