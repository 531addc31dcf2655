package session

import (
	"context"
	"time"
)

// LoginInput carries the credential fields for a backend login call.
type LoginInput struct {
	Email     string
	Password  string
	CSRFToken string
	Remember  bool
}

// UserData is the full profile snapshot returned by the backend's
// current-user endpoint.
type UserData struct {
	Student     *Student
	Role        Role
	Permissions Permissions
	Committees  []Committee
	Positions   []CommitteePosition
	RGBank      *RGBankPermissions
	BankAccount *BankAccount
	Expiry      time.Time
}

// Backend is the remote authentication service the controller talks to.
// Credentials travel in the HTTP session cookie owned by the implementation.
type Backend interface {
	CSRFToken(ctx context.Context) (string, error)
	Login(ctx context.Context, input LoginInput) error
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (UserData, error)
}
