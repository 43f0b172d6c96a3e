// Package users implements the simulator's in-memory user pool: a
// multiset of renters drawn uniformly at random on rental start and
// returned on rental end.
package users

import "math/rand"

// User is a renter available to be assigned to a rental.
type User struct {
	UserID   int
	UserName string
}

// simulatedFallbackUser is returned when the pool is empty, matching the
// original's inline fallback in _assign_user.
var simulatedFallbackUser = User{UserID: 1, UserName: "Simulated User"}

// Pool is a multiset of Users supporting O(1) random draw and release.
// Backed by a slice with swap-remove, since users are not otherwise
// ordered or deduplicated.
type Pool struct {
	members []User
}

// New builds a Pool seeded with the given users.
func New(seed []User) *Pool {
	members := make([]User, len(seed))
	copy(members, seed)
	return &Pool{members: members}
}

// Draw removes and returns a uniformly random user from the pool. If the
// pool is empty, returns the synthetic fallback user without mutating the
// pool. Release does not distinguish it from a real member, though: the
// matching Release call appends it like any other user, so it can end up
// a genuine (if accidental) member of the pool afterward — a quirk carried
// over from the original's equivalent fallback-assignment path.
func (p *Pool) Draw() User {
	if len(p.members) == 0 {
		return simulatedFallbackUser
	}

	i := rand.Intn(len(p.members))
	u := p.members[i]

	last := len(p.members) - 1
	p.members[i] = p.members[last]
	p.members = p.members[:last]

	return u
}

// Release returns a user to the pool, making it available for future draws.
func (p *Pool) Release(u User) {
	p.members = append(p.members, u)
}

// Len reports the current pool size.
func (p *Pool) Len() int {
	return len(p.members)
}
