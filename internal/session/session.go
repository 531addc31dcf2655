package session

import (
	"strings"
	"time"
)

// Role is the coarse role reported by the backend for the current user.
type Role string

const (
	// RoleOther is the default role for unauthenticated or unprivileged users.
	RoleOther Role = "OTHER"
	// RoleCommitteeMember marks users holding at least one committee position.
	RoleCommitteeMember Role = "COMMITTEE_MEMBER"
	// RoleAdmin marks union administrators.
	RoleAdmin Role = "ADMIN"
)

// ParseRole maps a backend role string to a Role, defaulting to RoleOther.
func ParseRole(value string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(value))) {
	case RoleCommitteeMember:
		return RoleCommitteeMember
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleOther
	}
}

// Student is the profile record of the logged-in user.
type Student struct {
	StudentID         string `json:"student_id"`
	Email             string `json:"email"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}

// Committee is an organizational unit the student may belong to.
type Committee struct {
	CommitteeID string `json:"committee_id"`
	Name        string `json:"name"`
	LogoURL     string `json:"logo_url,omitempty"`
}

// CommitteePosition is a held position with its validity dates.
type CommitteePosition struct {
	PositionID  string     `json:"position_id"`
	CommitteeID string     `json:"committee_id"`
	Title       string     `json:"title"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"` // nil while the position is still held
}

// ActiveAt reports whether the position is valid at the given instant.
func (p CommitteePosition) ActiveAt(at time.Time) bool {
	if at.Before(p.StartDate) {
		return false
	}
	if p.EndDate == nil {
		return true
	}
	return at.Before(*p.EndDate)
}

// Permissions holds the two independent permission sets of the student:
// fine-grained capability flags and authorable content types.
type Permissions struct {
	Student []string `json:"student"`
	Author  []string `json:"author"`
}

// RGBankPermissions gates the reimbursement portal. ViewPermissionLevel is
// tiered: 0 none, 1 committee-scoped, 2 global override.
type RGBankPermissions struct {
	AccessLevel         int `json:"access_level"`
	ViewPermissionLevel int `json:"view_permission_level"`
}

// BankAccount is the student's linked payout account, when one exists.
type BankAccount struct {
	BankName       string `json:"bank_name"`
	ClearingNumber string `json:"clearing_number"`
	AccountNumber  string `json:"account_number"`
}

// Session is the immutable snapshot of authentication and authorization
// state. The reducer replaces it wholesale; callers must not mutate a
// snapshot they received.
type Session struct {
	Student       *Student
	Authenticated bool
	Role          Role
	Permissions   Permissions
	Committees    []Committee
	Positions     []CommitteePosition
	RGBank        *RGBankPermissions
	BankAccount   *BankAccount
	Expiry        time.Time // token expiry; zero when unknown
	Err           error
	Loading       bool
	Stale         bool
}

// New returns the logged-out default session.
func New() Session {
	return Session{
		Role:        RoleOther,
		Committees:  []Committee{},
		Positions:   []CommitteePosition{},
		Permissions: Permissions{Student: []string{}, Author: []string{}},
	}
}

// DedupeCommittees collapses duplicate committee ids, keeping the first
// occurrence. The backend reports one affiliation per held position, so a
// student with two positions in a committee lists it twice.
func DedupeCommittees(committees []Committee) []Committee {
	out := make([]Committee, 0, len(committees))
	seen := make(map[string]struct{}, len(committees))
	for _, committee := range committees {
		if _, ok := seen[committee.CommitteeID]; ok {
			continue
		}
		seen[committee.CommitteeID] = struct{}{}
		out = append(out, committee)
	}
	return out
}
