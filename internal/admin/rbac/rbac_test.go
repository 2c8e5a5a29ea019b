package rbac

import "testing"

func TestHasCapabilityMatrix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		roles      []string
		capability Capability
		want       bool
	}{
		{
			name:       "admin has defined capability",
			roles:      []string{"admin"},
			capability: CapProductsList,
			want:       true,
		},
		{
			name:       "admin denied for undefined capability",
			roles:      []string{"admin"},
			capability: Capability("made.up"),
			want:       false,
		},
		{
			name:       "operator can publish",
			roles:      []string{"operator"},
			capability: CapProductsPublish,
			want:       true,
		},
		{
			name:       "operator cannot delete",
			roles:      []string{"operator"},
			capability: CapProductsDelete,
			want:       false,
		},
		{
			name:       "viewer cannot manage branding",
			roles:      []string{"viewer"},
			capability: CapBrandingManage,
			want:       false,
		},
		{
			name:       "viewer can view marketplace listings",
			roles:      []string{"viewer"},
			capability: CapMeliView,
			want:       true,
		},
		{
			name:       "combined roles inherit union of capabilities",
			roles:      []string{"viewer", "operator"},
			capability: CapFilesUpload,
			want:       true,
		},
		{
			name:       "unknown role grants nothing",
			roles:      []string{"unknown"},
			capability: CapProductsList,
			want:       false,
		},
		{
			name:       "empty capability defaults to visible",
			roles:      []string{"viewer"},
			capability: Capability(""),
			want:       true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := HasCapability(tc.roles, tc.capability); got != tc.want {
				t.Fatalf("HasCapability(%v, %q) = %v, want %v", tc.roles, tc.capability, got, tc.want)
			}
		})
	}
}

func TestCapabilitiesForRoles(t *testing.T) {
	t.Parallel()

	caps := CapabilitiesForRoles([]string{"operator"})
	if caps[CapProductsWrite] != true {
		t.Fatalf("operator should have CapProductsWrite")
	}
	if caps[CapBrandingManage] {
		t.Fatalf("operator must not have CapBrandingManage")
	}
}

func TestHasAnyRole(t *testing.T) {
	t.Parallel()

	if !HasAnyRole([]string{"operator"}, Roles{RoleOperator}) {
		t.Fatal("operator should satisfy role requirement")
	}
	if HasAnyRole([]string{"viewer"}, Roles{RoleOperator}) {
		t.Fatal("viewer should not satisfy operator-only requirement")
	}
	if !HasAnyRole([]string{"viewer"}, Roles{RoleViewer, RoleOperator}) {
		t.Fatal("viewer should satisfy viewer-or-operator requirement")
	}
	if !HasAnyRole([]string{"unknown", "admin"}, Roles{RoleViewer}) {
		t.Fatal("admin should satisfy requirement even when other roles unknown")
	}
}
