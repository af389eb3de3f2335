package suite

import (
	"testing"

	"github.com/abdul-hamid-achik/contractcheck/packages/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixture_FindInCreationOrder(t *testing.T) {
	f := NewFixture()
	f.Add(fixtures.AdminUser, fixtures.User{Nome: "Admin", Administrador: "true"}, "1")
	f.Add(fixtures.RegularUser, fixtures.User{Nome: "Regular", Administrador: "false"}, "2")
	f.Add(fixtures.DeleteUser, fixtures.User{Nome: "Usuario Para Deletar", Administrador: "false"}, "3")

	u, ok := f.Find(func(u CreatedUser) bool { return !u.IsAdmin() })
	require.True(t, ok)
	assert.Equal(t, "2", u.ID)

	u, ok = f.Get(fixtures.DeleteUser)
	require.True(t, ok)
	assert.Equal(t, "Usuario Para Deletar", u.Nome)

	_, ok = f.Get(fixtures.SpecialCharsUser)
	assert.False(t, ok)
}

func TestFixture_MarkDeleted(t *testing.T) {
	f := NewFixture()
	f.Add(fixtures.RegularUser, fixtures.User{Administrador: "false"}, "2")
	f.Add(fixtures.DeleteUser, fixtures.User{Administrador: "false"}, "3")
	f.Track("extra")
	f.Track("")

	assert.Equal(t, []string{"2", "3", "extra"}, f.PendingIDs())

	f.MarkDeleted("2")
	f.MarkDeleted("extra")

	u, ok := f.Find(func(u CreatedUser) bool { return !u.IsAdmin() })
	require.True(t, ok)
	assert.Equal(t, "3", u.ID)
	assert.Equal(t, []string{"3"}, f.PendingIDs())

	users := f.Users()
	require.Len(t, users, 2)
	assert.True(t, users[0].Deleted)
}

func TestFilter(t *testing.T) {
	all := All()

	assert.Len(t, Filter(all, "", nil), 12)
	assert.Len(t, Filter(all, "ct-00", nil), 9)
	assert.Len(t, Filter(all, "CT-010", nil), 1)
	assert.Len(t, Filter(all, "administrador", nil), 2)

	negatives := Filter(all, "", []string{"negative"})
	var ids []string
	for _, s := range negatives {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"CR-002", "CT-001", "CT-002", "CT-003", "CT-004", "CT-005", "CT-009"}, ids)

	assert.Len(t, Filter(all, "CT", []string{"create"}), 0)
	assert.Len(t, Filter(all, "", []string{"create", "POSITIVE"}), 6)
}

func TestAll_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range All() {
		assert.False(t, seen[s.ID], s.ID)
		seen[s.ID] = true
		assert.NotNil(t, s.Run, s.ID)
		assert.NotEmpty(t, s.Tags, s.ID)
	}
}
