package identity

import (
	"github.com/google/uuid"
)

// Mode distinguishes the two actor kinds the backend knows about.
type Mode int

const (
	// ModeAuthenticated means the server session/cookie is the source of
	// truth; the client holds no token of its own.
	ModeAuthenticated Mode = iota
	// ModeGuest means the actor is identified by a locally generated,
	// storage-persisted opaque id instead of a server session.
	ModeGuest
)

const (
	guestFlagKey  = "isGuest"
	guestIDKey    = "guest_id"
	guestIDPrefix = "guest_"
)

// Identity is resolved exactly once per page lifetime and never changes
// without a full navigation.
type Identity struct {
	Mode    Mode
	GuestID string
}

func (i Identity) IsGuest() bool {
	return i.Mode == ModeGuest
}

// Store is the per-tab storage the identity state lives in. The browser
// analogue is sessionStorage; outside a browser any small KV works.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// Resolve reads the guest flag and produces the actor identity. When the
// flag is set and no guest id exists yet, a fresh one is generated and
// written back so repeated resolution within the same store lifetime is
// stable. Resolution is infallible and performs no network calls.
func Resolve(store Store) Identity {
	if flag, ok := store.Get(guestFlagKey); !ok || flag != "true" {
		return Identity{Mode: ModeAuthenticated}
	}

	id, ok := store.Get(guestIDKey)
	if !ok || id == "" {
		id = guestIDPrefix + uuid.NewString()
		store.Set(guestIDKey, id)
	}

	return Identity{Mode: ModeGuest, GuestID: id}
}

// MarkGuest sets the guest flag so the next Resolve returns a guest
// identity. The id itself stays lazy.
func MarkGuest(store Store) {
	store.Set(guestFlagKey, "true")
}

// ClearGuest removes the guest flag, used when a guest heads back to the
// login page. The stored id is left behind; a later guest session starts
// over because MarkGuest is what re-arms resolution.
func ClearGuest(store Store) {
	store.Delete(guestFlagKey)
}
