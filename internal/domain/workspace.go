package domain

// Workspace groups projects and members under a default billing rate.
type Workspace struct {
	ID         string
	Name       string
	HourlyRate *CurrencyPair
	Users      []User
}

// Member returns the workspace member with the given ID.
func (w Workspace) Member(userID string) (User, bool) {
	for _, u := range w.Users {
		if u.ID == userID {
			return u, true
		}
	}
	return User{}, false
}

// RateFor resolves the hourly rate of a member: the membership rate when set,
// otherwise the workspace rate. Nil means neither is configured.
func (w Workspace) RateFor(userID string) *CurrencyPair {
	if u, ok := w.Member(userID); ok && u.HourlyRate.IsSet() {
		return u.HourlyRate
	}
	if w.HourlyRate.IsSet() {
		return w.HourlyRate
	}
	return nil
}
