package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaultsToAuthenticated(t *testing.T) {
	store := NewMemoryStore()

	id := Resolve(store)
	require.Equal(t, ModeAuthenticated, id.Mode)
	assert.Empty(t, id.GuestID)

	// An unrelated or malformed flag value still resolves to authenticated.
	store.Set("isGuest", "yes")
	assert.Equal(t, ModeAuthenticated, Resolve(store).Mode)
}

func TestResolveGuestGeneratesPrefixedID(t *testing.T) {
	store := NewMemoryStore()
	MarkGuest(store)

	id := Resolve(store)
	require.Equal(t, ModeGuest, id.Mode)
	require.True(t, strings.HasPrefix(id.GuestID, "guest_"))
	assert.Greater(t, len(id.GuestID), len("guest_"))
}

func TestResolveIsIdempotentWithinStoreLifetime(t *testing.T) {
	store := NewMemoryStore()
	MarkGuest(store)

	first := Resolve(store)
	second := Resolve(store)
	require.Equal(t, first.GuestID, second.GuestID)

	// The id is persisted back into the store, not regenerated.
	stored, ok := store.Get("guest_id")
	require.True(t, ok)
	assert.Equal(t, first.GuestID, stored)
}

func TestResolveKeepsPreexistingGuestID(t *testing.T) {
	store := NewMemoryStore()
	MarkGuest(store)
	store.Set("guest_id", "guest_fixed")

	id := Resolve(store)
	assert.Equal(t, "guest_fixed", id.GuestID)
}

func TestClearGuestRearmsAuthenticated(t *testing.T) {
	store := NewMemoryStore()
	MarkGuest(store)
	require.True(t, Resolve(store).IsGuest())

	ClearGuest(store)
	assert.Equal(t, ModeAuthenticated, Resolve(store).Mode)
}
