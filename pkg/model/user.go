package model

// Role 用户角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAttendant Role = "attendant"
	RoleAdmin     Role = "admin"
)

// Valid 判断角色是否为已知取值
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAttendant, RoleAdmin:
		return true
	}
	return false
}

// Status 用户审批状态
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// User 用户信息结构，由后端登录接口返回
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role"`
	Status   Status `json:"status"`
}

// LoginRequest 登录请求结构
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 后端登录响应
// 后端历史上同时使用 accessToken 和 token 两种字段名
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	Token       string `json:"token"`
	User        *User  `json:"user"`
}

// BearerToken 返回后端签发的访问令牌
func (r *LoginResponse) BearerToken() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

// SessionResponse 当前会话信息（不包含访问令牌）
type SessionResponse struct {
	User      User  `json:"user"`
	ExpiresAt int64 `json:"expiresAt"`
}
