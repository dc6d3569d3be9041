package auth

import "strings"

// Actor 是发起操作的已认证用户
type Actor struct {
	UserID string
	Role   string
}

// StatusPolicy 决定调用者能否修改报告状态
type StatusPolicy interface {
	CanUpdateStatus(actor Actor) bool
}

// AllowAuthenticated 允许任何已认证用户修改状态
type AllowAuthenticated struct{}

func (AllowAuthenticated) CanUpdateStatus(actor Actor) bool {
	return actor.UserID != ""
}

// RolePolicy 只允许指定角色修改状态
type RolePolicy struct {
	roles map[string]struct{}
}

// NewRolePolicy 创建基于角色的策略，角色名不区分大小写
func NewRolePolicy(roles ...string) *RolePolicy {
	p := &RolePolicy{roles: make(map[string]struct{}, len(roles))}
	for _, r := range roles {
		if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
			p.roles[r] = struct{}{}
		}
	}
	return p
}

func (p *RolePolicy) CanUpdateStatus(actor Actor) bool {
	if actor.UserID == "" {
		return false
	}
	_, ok := p.roles[strings.ToLower(actor.Role)]
	return ok
}

// NewStatusPolicy 根据配置的角色列表选择策略，列表为空时允许所有已认证用户
func NewStatusPolicy(roles []string) StatusPolicy {
	p := NewRolePolicy(roles...)
	if len(p.roles) == 0 {
		return AllowAuthenticated{}
	}
	return p
}
