package fixtures

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/contractcheck/packages/core/env"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestDefault(t *testing.T) {
	set := Default()

	assert.Equal(t, SetupOrder, set.Names())

	admin, err := set.Get(AdminUser)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	regular, err := set.Get(RegularUser)
	require.NoError(t, err)
	assert.False(t, regular.IsAdmin())

	del, err := set.Get(DeleteUser)
	require.NoError(t, err)
	assert.Equal(t, "Usuario Para Deletar", del.Nome)

	upd, err := set.Get(UpdateUser)
	require.NoError(t, err)
	assert.Equal(t, "Usuario Para Atualizar", upd.Nome)

	special, err := set.Get(SpecialCharsUser)
	require.NoError(t, err)
	assert.Equal(t, "Usuário com Acentuação & Símbolos", special.Nome)
}

func TestSet_GetUnknown(t *testing.T) {
	_, err := Default().Get("ghost_user")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownFixture))
	assert.Contains(t, err.Error(), "ghost_user")
}

func TestSet_NamesOrdersExtrasAfterKnown(t *testing.T) {
	set := NewSet(map[string]User{
		"zeta":     {},
		DeleteUser: {},
		"alpha":    {},
		AdminUser:  {},
	})
	assert.Equal(t, []string{AdminUser, DeleteUser, "alpha", "zeta"}, set.Names())
}

func TestUser_Body(t *testing.T) {
	u := User{Nome: "Usuário com Acentuação & Símbolos", Email: "a@b.com", Password: `p"w`, Administrador: "false"}

	body, err := u.Body()
	require.NoError(t, err)

	assert.JSONEq(t, `{"nome":"Usuário com Acentuação & Símbolos","email":"a@b.com","password":"p\"w","administrador":"false"}`, string(body))

	var keys []string
	gjson.ParseBytes(body).ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	assert.Equal(t, []string{"nome", "email", "password", "administrador"}, keys)
}

func TestUnique(t *testing.T) {
	u := User{Email: "fulano@qa.com"}

	a := Unique(u)
	b := Unique(u)

	assert.NotEqual(t, a.Email, b.Email)
	assert.True(t, strings.HasPrefix(a.Email, "fulano."))
	assert.True(t, strings.HasSuffix(a.Email, "@qa.com"))
	assert.Equal(t, "fulano@qa.com", u.Email)

	noAt := Unique(User{Email: "broken"})
	assert.True(t, strings.HasPrefix(noAt.Email, "broken."))
}

func TestSet_Unique(t *testing.T) {
	set := Default()
	unique := set.Unique()

	for _, name := range set.Names() {
		orig, _ := set.Get(name)
		u, err := unique.Get(name)
		require.NoError(t, err)
		assert.NotEqual(t, orig.Email, u.Email, name)
		assert.Equal(t, orig.Nome, u.Nome, name)
	}
}

func TestSet_Resolve(t *testing.T) {
	t.Setenv("CONTRACTCHECK_FIXTURE_PASSWORD", "s3nha")

	set := NewSet(map[string]User{
		AdminUser: {
			Nome:          "Admin {{run}}",
			Email:         "admin.{{shortId()}}@qa.com",
			Password:      "{{$CONTRACTCHECK_FIXTURE_PASSWORD}}",
			Administrador: "true",
		},
	})

	r := env.NewResolver()
	r.SetVariable("run", "42")

	resolved, err := set.Resolve(r)
	require.NoError(t, err)

	u, err := resolved.Get(AdminUser)
	require.NoError(t, err)
	assert.Equal(t, "Admin 42", u.Nome)
	assert.Regexp(t, `^admin\.[0-9a-f]{8}@qa\.com$`, u.Email)
	assert.Equal(t, "s3nha", u.Password)

	t.Run("unresolved placeholder fails", func(t *testing.T) {
		bad := NewSet(map[string]User{RegularUser: {Nome: "{{missing}}", Administrador: "false"}})
		_, err := bad.Resolve(env.NewResolver())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing")
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "usuarios.test.data.json")
		require.NoError(t, os.WriteFile(path, []byte(`{
			"admin_user": {"nome": "Admin", "email": "admin@qa.com", "password": "teste", "administrador": "true"},
			"delete_user": {"nome": "Usuario Para Deletar", "email": "del@qa.com", "password": "teste", "administrador": "false"}
		}`), 0644))

		set, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{AdminUser, DeleteUser}, set.Names())
	})

	t.Run("yaml with unquoted bool", func(t *testing.T) {
		path := filepath.Join(dir, "usuarios.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
regular_user:
  nome: Usuario Regular
  email: regular@qa.com
  password: teste
  administrador: false
`), 0644))

		set, err := Load(path)
		require.NoError(t, err)
		u, err := set.Get(RegularUser)
		require.NoError(t, err)
		assert.Equal(t, "false", u.Administrador)
	})

	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"admin_user": `), 0644))

		_, err := Load(path)
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, path, perr.Path)
	})

	t.Run("invalid administrador", func(t *testing.T) {
		path := filepath.Join(dir, "admin.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"admin_user": {"nome": "A", "administrador": "yes"}}`), 0644))

		_, err := Load(path)
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Contains(t, err.Error(), "administrador")
	})

	t.Run("empty", func(t *testing.T) {
		path := filepath.Join(dir, "empty.json")
		require.NoError(t, os.WriteFile(path, []byte(`{}`), 0644))

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.json"))
		assert.Error(t, err)
	})
}
