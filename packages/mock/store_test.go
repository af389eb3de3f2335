package mock

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/abdul-hamid-achik/contractcheck/packages/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	mem, err := OpenSQLite("")
	require.NoError(t, err)
	file, err := OpenSQLite("sqlite://" + filepath.Join(t.TempDir(), "mock.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = mem.Close()
		_ = file.Close()
	})
	return map[string]Store{
		"memory":        NewMemoryStore(),
		"sqlite memory": mem,
		"sqlite file":   file,
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			admin := fixtures.User{Nome: "Admin", Email: "admin@qa.com", Password: "x", Administrador: "true"}
			regular := fixtures.User{Nome: "Regular", Email: "regular@qa.com", Password: "x", Administrador: "false"}

			a, err := store.Create(ctx, admin)
			require.NoError(t, err)
			assert.Len(t, a.ID, 16)
			r, err := store.Create(ctx, regular)
			require.NoError(t, err)
			assert.NotEqual(t, a.ID, r.ID)

			_, err = store.Create(ctx, admin)
			assert.ErrorIs(t, err, ErrEmailTaken)

			got, ok, err := store.Get(ctx, a.ID)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, admin, got.User)

			list, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, a.ID, list[0].ID)
			assert.Equal(t, r.ID, list[1].ID)

			removed, err := store.Delete(ctx, a.ID)
			require.NoError(t, err)
			assert.True(t, removed)

			removed, err = store.Delete(ctx, a.ID)
			require.NoError(t, err)
			assert.False(t, removed)

			_, ok, err = store.Get(ctx, a.ID)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestMemoryStore_ConcurrentCreate(t *testing.T) {
	store := NewMemoryStore()
	u := fixtures.User{Nome: "Same", Email: "same@qa.com", Password: "x", Administrador: "false"}

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Create(context.Background(), u); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}

func TestRouter_Match(t *testing.T) {
	r := NewRouter()
	r.Handle("GET", "/usuarios", "list", nil)
	r.Handle("DELETE", "/usuarios/{{id}}", "delete", nil)

	route, params, _ := r.Match("DELETE", "/usuarios/id%40%23%24%25%5E&%2A%28%29")
	require.NotNil(t, route)
	assert.Equal(t, "delete", route.Name)
	assert.Equal(t, "id@#$%^&*()", params["id"])

	route, _, _ = r.Match("GET", "/usuarios/")
	require.NotNil(t, route)
	assert.Equal(t, "list", route.Name)

	route, _, pathMatched := r.Match("PUT", "/usuarios")
	assert.Nil(t, route)
	assert.True(t, pathMatched)

	route, _, pathMatched = r.Match("GET", "/produtos")
	assert.Nil(t, route)
	assert.False(t, pathMatched)
}
