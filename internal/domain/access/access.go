package access

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

type AdminRole string

const (
	RoleUserManager    AdminRole = "USER_MANAGER"
	RoleTechnician     AdminRole = "TECHNICIAN"
	RoleFinance        AdminRole = "FINANCE"
	RoleContentManager AdminRole = "CONTENT_MANAGER"
	RoleSuperAdmin     AdminRole = "SUPER_ADMIN"
)

var knownRoles = map[AdminRole]struct{}{
	RoleUserManager:    {},
	RoleTechnician:     {},
	RoleFinance:        {},
	RoleContentManager: {},
	RoleSuperAdmin:     {},
}

func ParseAdminRole(s string) (AdminRole, bool) {
	r := AdminRole(s)
	_, ok := knownRoles[r]
	return r, ok
}

type Capability string

const (
	CapManageAssignments Capability = "assignments:manage"
	CapManageVideos      Capability = "videos:manage"
	CapViewCompliance    Capability = "users:compliance"
)

var knownCapabilities = map[Capability]struct{}{
	CapManageAssignments: {},
	CapManageVideos:      {},
	CapViewCompliance:    {},
}

// Matrix maps each operator role to the capabilities it holds.
type Matrix struct {
	grants map[AdminRole]map[Capability]struct{}
}

type matrixDoc struct {
	Version int                 `yaml:"version"`
	Roles   map[string][]string `yaml:"roles"`
}

//go:embed capabilities.yaml
var defaultMatrixYAML []byte

var (
	defaultOnce   sync.Once
	defaultMatrix *Matrix
	defaultErr    error
)

// Default returns the embedded matrix.
func Default() (*Matrix, error) {
	defaultOnce.Do(func() {
		defaultMatrix, defaultErr = ParseMatrix(defaultMatrixYAML)
	})
	return defaultMatrix, defaultErr
}

// ParseMatrix decodes a YAML matrix, rejecting unknown roles and capabilities.
func ParseMatrix(raw []byte) (*Matrix, error) {
	var doc matrixDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode capability matrix: %w", err)
	}
	m := &Matrix{grants: make(map[AdminRole]map[Capability]struct{}, len(doc.Roles))}
	for roleName, caps := range doc.Roles {
		role, ok := ParseAdminRole(roleName)
		if !ok {
			return nil, fmt.Errorf("capability matrix: unknown role %q", roleName)
		}
		set := make(map[Capability]struct{}, len(caps))
		for _, c := range caps {
			capability := Capability(c)
			if _, ok := knownCapabilities[capability]; !ok {
				return nil, fmt.Errorf("capability matrix: unknown capability %q for %s", c, roleName)
			}
			set[capability] = struct{}{}
		}
		m.grants[role] = set
	}
	return m, nil
}

// Allows reports whether a principal holds capability c. Only admins carry
// capabilities; an admin without a known operator role holds none.
func (m *Matrix) Allows(role, adminRole string, c Capability) bool {
	if m == nil || role != "admin" {
		return false
	}
	r, ok := ParseAdminRole(adminRole)
	if !ok {
		return false
	}
	_, ok = m.grants[r][c]
	return ok
}

// Capabilities lists what an operator role holds, sorted.
func (m *Matrix) Capabilities(adminRole AdminRole) []Capability {
	out := make([]Capability, 0, len(m.grants[adminRole]))
	for c := range m.grants[adminRole] {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
