package models

// AdminRole is the only role issued for admin sessions
const AdminRole = "admin"

// AdminSession represents an authenticated site owner session
type AdminSession struct {
	Subject   string `json:"subject"`
	Role      string `json:"role"`
	ExpiresAt int64  `json:"exp"`
	IssuedAt  int64  `json:"iat"`
}

// AdminLoginRequest is the payload for admin login
type AdminLoginRequest struct {
	Password string `json:"password" binding:"required,max=256"`
}

// AdminLoginResponse is returned after a login attempt
type AdminLoginResponse struct {
	Success bool          `json:"success"`
	Token   string        `json:"token,omitempty"`
	Session *AdminSession `json:"session,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// LogoutResponse is returned after logout
type LogoutResponse struct {
	Success bool `json:"success"`
}
