package enums

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "administrator"
	RoleMember Role = "member"
)

// Privileged roles are never auto-removed by moderation.
func (r Role) Privileged() bool {
	return r == RoleOwner || r == RoleAdmin
}
