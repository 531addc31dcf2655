package session

// action is the tagged union of session state transitions. Every mutation of
// the snapshot goes through apply with exactly one of these variants.
type action interface {
	isAction()
}

// loginSucceeded records a successful credential exchange. The profile is
// deliberately not populated here: the snapshot is marked stale so the next
// refresh is the single code path that loads profile data.
type loginSucceeded struct{}

// loggedOut resets the session to the logged-out defaults.
type loggedOut struct{}

// userDataFetched replaces the snapshot with a freshly fetched profile.
type userDataFetched struct {
	data UserData
}

// loadingSet toggles the in-flight marker.
type loadingSet struct {
	loading bool
}

// errorSet records the last authentication error.
type errorSet struct {
	err error
}

// staleSet flags cached session data as untrusted.
type staleSet struct {
	stale bool
}

func (loginSucceeded) isAction()  {}
func (loggedOut) isAction()       {}
func (userDataFetched) isAction() {}
func (loadingSet) isAction()      {}
func (errorSet) isAction()        {}
func (staleSet) isAction()        {}

// apply is the pure session reducer: given the current snapshot and an
// action it returns the next snapshot, never mutating the input.
func apply(state Session, act action) Session {
	switch act := act.(type) {
	case loginSucceeded:
		state.Authenticated = true
		state.Stale = true
		state.Err = nil
		return state
	case loggedOut:
		return New()
	case userDataFetched:
		next := New()
		next.Student = act.data.Student
		next.Authenticated = act.data.Student != nil
		next.Role = act.data.Role
		if next.Role == "" {
			next.Role = RoleOther
		}
		if act.data.Permissions.Student != nil || act.data.Permissions.Author != nil {
			next.Permissions = act.data.Permissions
		}
		next.Committees = DedupeCommittees(act.data.Committees)
		next.Positions = act.data.Positions
		if next.Positions == nil {
			next.Positions = []CommitteePosition{}
		}
		next.RGBank = act.data.RGBank
		next.BankAccount = act.data.BankAccount
		next.Expiry = act.data.Expiry
		next.Loading = state.Loading
		return next
	case loadingSet:
		state.Loading = act.loading
		return state
	case errorSet:
		state.Err = act.err
		return state
	case staleSet:
		state.Stale = act.stale
		return state
	}
	return state
}
