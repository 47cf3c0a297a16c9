package models

// Capability 호출자에게 요구되는 권한
type Capability string

const (
	CapManageOptions Capability = "manage_options"
	CapCreateUsers   Capability = "create_users"
	CapDeleteUsers   Capability = "delete_users"
)

// Role 계정 역할
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleFeedSupport   Role = "feed_support"
)

// roleCapabilities 역할별 허용 권한
var roleCapabilities = map[Role][]Capability{
	RoleAdministrator: {CapManageOptions, CapCreateUsers, CapDeleteUsers},
	RoleFeedSupport:   {CapManageOptions},
}

// Has reports whether the role grants the capability.
func (r Role) Has(c Capability) bool {
	for _, granted := range roleCapabilities[r] {
		if granted == c {
			return true
		}
	}
	return false
}

// IsValid 알려진 역할인지 확인
func (r Role) IsValid() bool {
	_, ok := roleCapabilities[r]
	return ok
}
