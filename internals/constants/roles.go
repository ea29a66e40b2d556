package constants

import (
	"fmt"
	"strings"
)

// Role adalah himpunan role yang dikenal sistem.
type Role string

const (
	RoleAdministrator Role = "Administrador"
	RoleReader        Role = "Lector"
)

func (r Role) String() string { return string(r) }

// Valid: hanya role yang terdaftar.
func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleReader:
		return true
	}
	return false
}

// rank dipakai untuk memilih role "utama" kalau user punya lebih dari satu.
func (r Role) rank() int {
	switch r {
	case RoleAdministrator:
		return 2
	case RoleReader:
		return 1
	}
	return 0
}

// ParseRole: case-insensitive, trim spasi.
func ParseRole(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	for _, r := range AllRoles {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return "", false
}

// HighestRole memilih role dengan rank tertinggi, kosong kalau tidak ada yang valid.
func HighestRole(roles []string) Role {
	var best Role
	for _, s := range roles {
		r, ok := ParseRole(s)
		if ok && r.rank() > best.rank() {
			best = r
		}
	}
	return best
}

// Template pesan error role
const (
	ErrOnlyAdminsCanAccess  = "❌ Solo un administrador puede %s."
	ErrOnlyMembersCanAccess = "❌ Debe iniciar sesión para %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorMember(feature string) string {
	return fmt.Sprintf(ErrOnlyMembersCanAccess, feature)
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []Role{
		RoleAdministrator,
		RoleReader,
	}

	AdminOnly = []Role{
		RoleAdministrator,
	}
)
