package suite

import (
	"sync"

	"github.com/abdul-hamid-achik/contractcheck/packages/fixtures"
)

// CreatedUser is a fixture user the API accepted.
type CreatedUser struct {
	Fixture string
	fixtures.User
	ID      string
	Deleted bool
}

// Fixture holds the users created during setup, in creation order, plus
// any extra ids scenarios created and want cleaned up.
type Fixture struct {
	mu      sync.Mutex
	users   []CreatedUser
	tracked []string
}

func NewFixture() *Fixture {
	return &Fixture{}
}

func (f *Fixture) Add(name string, u fixtures.User, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, CreatedUser{Fixture: name, User: u, ID: id})
}

// Get returns the live user created from the named fixture.
func (f *Fixture) Get(name string) (CreatedUser, bool) {
	return f.Find(func(u CreatedUser) bool { return u.Fixture == name })
}

// Find returns the first live user, in creation order, matching pred.
func (f *Fixture) Find(pred func(CreatedUser) bool) (CreatedUser, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if !u.Deleted && pred(u) {
			return u, true
		}
	}
	return CreatedUser{}, false
}

// MarkDeleted records that id no longer exists so cleanup skips it.
func (f *Fixture) MarkDeleted(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].ID == id {
			f.users[i].Deleted = true
		}
	}
	for i, t := range f.tracked {
		if t == id {
			f.tracked = append(f.tracked[:i], f.tracked[i+1:]...)
			break
		}
	}
}

// Track adds an id created outside setup to the cleanup list.
func (f *Fixture) Track(id string) {
	if id == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tracked = append(f.tracked, id)
}

// Users returns every created user, deleted ones included.
func (f *Fixture) Users() []CreatedUser {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CreatedUser(nil), f.users...)
}

// PendingIDs returns the ids cleanup still has to delete.
func (f *Fixture) PendingIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, u := range f.users {
		if !u.Deleted {
			ids = append(ids, u.ID)
		}
	}
	return append(ids, f.tracked...)
}
