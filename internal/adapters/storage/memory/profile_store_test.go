package memory_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/lifeline-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/lifeline-agent/internal/domain"
)

func TestProfileStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProfileStore()

	p := domain.NewProfile("ana@example.com")
	p.EmergencyContacts = append(p.EmergencyContacts, domain.Contact{ID: "c1", Name: "Mum", PhoneNumber: "+14155551234"})

	require.NoError(t, store.Save(ctx, p))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(p, got); diff != "" {
		t.Fatalf("profile mismatch (-want +got):\n%s", diff)
	}

	// Mutating the loaded copy must not leak into the slot.
	got.EmergencyContacts[0].Name = "changed"
	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Mum", again.EmergencyContacts[0].Name)
}

func TestProfileStoreEmptyAndClear(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProfileStore()

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Save(ctx, domain.NewProfile("")))
	require.NoError(t, store.Clear(ctx))

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProfileStoreCorruptBlob(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProfileStore()
	store.SetRaw([]byte("{not json"))

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrCorruptData)

	require.NoError(t, store.Save(ctx, domain.NewProfile("ok")))
	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Identity)
}
