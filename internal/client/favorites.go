package client

import (
	"context"
	"sort"
	"sync"
)

// Favorites mirrors the member's server-side favorite set. The local copy is
// a cache of the authoritative one: every mutation goes to the server first
// and the cache only changes after the server confirmed it.
type Favorites struct {
	api    API
	authed func() bool

	mu  sync.RWMutex
	set map[int]bool

	// One lock per product id, so concurrent toggles of different products
	// proceed independently while double-clicks on the same product serialize.
	locksMu sync.Mutex
	locks   map[int]*sync.Mutex
}

// NewFavorites builds a synchronizer; authed reports whether a session is
// active, so toggles from a signed-out state fail locally without a request.
func NewFavorites(api API, authed func() bool) *Favorites {
	if authed == nil {
		authed = func() bool { return true }
	}
	return &Favorites{
		api:    api,
		authed: authed,
		set:    map[int]bool{},
		locks:  map[int]*sync.Mutex{},
	}
}

func (f *Favorites) productLock(productID int) *sync.Mutex {
	f.locksMu.Lock()
	defer f.locksMu.Unlock()
	l, ok := f.locks[productID]
	if !ok {
		l = &sync.Mutex{}
		f.locks[productID] = l
	}
	return l
}

// Refresh replaces the cache with the server's current set.
func (f *Favorites) Refresh(ctx context.Context) error {
	ids, err := f.api.Favorites(ctx)
	if err != nil {
		return err
	}

	next := make(map[int]bool, len(ids))
	for _, id := range ids {
		next[id] = true
	}

	f.mu.Lock()
	f.set = next
	f.mu.Unlock()
	return nil
}

// Reset drops the cache. Called when the session ends.
func (f *Favorites) Reset() {
	f.mu.Lock()
	f.set = map[int]bool{}
	f.mu.Unlock()
}

func (f *Favorites) Contains(productID int) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.set[productID]
}

func (f *Favorites) List() []int {
	f.mu.RLock()
	ids := make([]int, 0, len(f.set))
	for id := range f.set {
		ids = append(ids, id)
	}
	f.mu.RUnlock()

	sort.Ints(ids)
	return ids
}

// Toggle flips the product's membership and reports the new state. The server
// call happens before the cache mutation, so a failed call leaves the cache
// exactly as it was.
func (f *Favorites) Toggle(ctx context.Context, productID int) (bool, error) {
	if !f.authed() {
		return false, ErrUnauthenticated
	}

	lock := f.productLock(productID)
	lock.Lock()
	defer lock.Unlock()

	if f.Contains(productID) {
		if err := f.api.RemoveFavorite(ctx, productID); err != nil {
			return true, err
		}
		f.mu.Lock()
		delete(f.set, productID)
		f.mu.Unlock()
		return false, nil
	}

	if err := f.api.AddFavorite(ctx, productID); err != nil {
		return false, err
	}
	f.mu.Lock()
	f.set[productID] = true
	f.mu.Unlock()
	return true, nil
}
