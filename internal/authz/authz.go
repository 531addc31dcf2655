// Package authz answers authorization questions as pure predicates over the
// current session snapshot. Predicates never touch the network and never
// fail: missing permission data always denies.
package authz

import (
	"github.com/usstm/unionclient/internal/session"
)

// View permission levels for the reimbursement portal.
const (
	// LevelNone denies all expense visibility.
	LevelNone = 0
	// LevelCommittee grants visibility scoped to the student's own committees.
	LevelCommittee = 1
	// LevelGlobal is a superuser-like override that bypasses committee scoping.
	LevelGlobal = 2
)

// CanViewExpenses reports whether the user may see expense and invoice
// listings at all. Nil permissions deny.
func CanViewExpenses(perms *session.RGBankPermissions) bool {
	if perms == nil {
		return false
	}
	return perms.ViewPermissionLevel >= LevelCommittee
}

// CanChangeExpense reports whether the user may modify an expense.
//
// A committee-scoped expense requires both membership in that committee and
// at least the committee level, unless the user holds the global override.
// An unscoped (personal) expense requires exactly the global override.
// Membership is compared by committee id, never by struct equality, so
// re-fetched copies of the same committee still match.
func CanChangeExpense(memberships []session.Committee, target *session.Committee, perms *session.RGBankPermissions) bool {
	if perms == nil {
		return false
	}
	if target != nil {
		if isMember(memberships, target.CommitteeID) && perms.ViewPermissionLevel >= LevelCommittee {
			return true
		}
		return perms.ViewPermissionLevel == LevelGlobal
	}
	return perms.ViewPermissionLevel == LevelGlobal
}

// Access levels for reimbursement administration.
const (
	// AccessNone grants no rgbank access beyond the user's own submissions.
	AccessNone = 0
	// AccessTreasurer grants processing of submitted expenses and invoices.
	AccessTreasurer = 1
	// AccessAdmin additionally grants payout and account administration.
	AccessAdmin = 2
)

// CanProcessReimbursements reports whether the user may work the processing
// queue (mark items confirmed, rejected, or paid).
func CanProcessReimbursements(perms *session.RGBankPermissions) bool {
	if perms == nil {
		return false
	}
	return perms.AccessLevel >= AccessTreasurer
}

// CanAdministerBankAccounts reports whether the user may view and edit
// linked payout accounts of other students.
func CanAdministerBankAccounts(perms *session.RGBankPermissions) bool {
	if perms == nil {
		return false
	}
	return perms.AccessLevel >= AccessAdmin
}

func isMember(memberships []session.Committee, committeeID string) bool {
	for _, membership := range memberships {
		if membership.CommitteeID == committeeID {
			return true
		}
	}
	return false
}
