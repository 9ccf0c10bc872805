package dto

import domainuser "tenderdesk/internal/domain/user"

// User is the wire form of an account (never includes the password hash).
type User struct {
	ID       string `json:"id"`
	RoleID   string `json:"rolId"`
	UserName string `json:"userName"`
	Mail     string `json:"mail"`
}

// UserSummary is the reduced shape returned by /users/by_role_key.
type UserSummary struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Mail     string `json:"mail"`
}

// Role is the wire form of a role.
type Role struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// RoleRef is the role slice embedded in the login response.
type RoleRef struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// AuthUser is the user shape embedded in the login response.
type AuthUser struct {
	ID       string   `json:"id"`
	UserName string   `json:"userName"`
	Mail     string   `json:"mail"`
	RoleID   string   `json:"rolId,omitempty"`
	Role     *RoleRef `json:"role,omitempty"`
}

// AuthResponse is returned by POST /auth/login.
type AuthResponse struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

// LoginRequest carries credentials; identifier is a mail when it contains
// '@', a userName otherwise.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// CreateUserRequest creates an account.
type CreateUserRequest struct {
	RoleID   string `json:"rolId"`
	UserName string `json:"userName"`
	Mail     string `json:"mail"`
	Password string `json:"password"`
}

// UpdateUserRequest patches an account; empty fields are left untouched.
type UpdateUserRequest struct {
	RoleID   string `json:"rolId,omitempty"`
	UserName string `json:"userName,omitempty"`
	Mail     string `json:"mail,omitempty"`
	Password string `json:"password,omitempty"`
}

// NewUser maps a domain user to its wire form.
func NewUser(u domainuser.User) User {
	return User{ID: u.ID, RoleID: u.RoleID, UserName: u.UserName, Mail: u.Mail}
}

// NewUserSummary maps a domain user to the by_role_key shape.
func NewUserSummary(u domainuser.User) UserSummary {
	return UserSummary{ID: u.ID, UserName: u.UserName, Mail: u.Mail}
}

// NewRole maps a domain role to its wire form.
func NewRole(r domainuser.Role) Role {
	return Role{ID: r.ID, Key: r.Key, Name: r.Name}
}
