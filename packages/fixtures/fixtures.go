package fixtures

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/contractcheck/packages/core/env"
	"github.com/google/uuid"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"
)

// Fixture names used by the users suite.
const (
	AdminUser         = "admin_user"
	RegularUser       = "regular_user"
	UpdateUser        = "update_user"
	DeleteUser        = "delete_user"
	CaseSensitiveUser = "case_sensitive_user"
	SpecialCharsUser  = "special_chars_user"
)

// SetupOrder is the order in which well-known fixtures are created. Any
// other fixture in a set follows, sorted by name.
var SetupOrder = []string{
	AdminUser,
	RegularUser,
	UpdateUser,
	DeleteUser,
	CaseSensitiveUser,
	SpecialCharsUser,
}

var ErrUnknownFixture = errors.New("unknown fixture")

// User is a /usuarios request body. Administrador is the string "true" or
// "false", as the API expects.
type User struct {
	Nome          string `json:"nome" yaml:"nome"`
	Email         string `json:"email" yaml:"email"`
	Password      string `json:"password" yaml:"password"`
	Administrador string `json:"administrador" yaml:"administrador"`
}

func (u User) IsAdmin() bool {
	return u.Administrador == "true"
}

// Body encodes u as the JSON request body, fields in API order.
func (u User) Body() ([]byte, error) {
	body := []byte(`{}`)
	var err error
	for _, kv := range [][2]string{
		{"nome", u.Nome},
		{"email", u.Email},
		{"password", u.Password},
		{"administrador", u.Administrador},
	} {
		body, err = sjson.SetBytes(body, kv[0], kv[1])
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", kv[0], err)
		}
	}
	return body, nil
}

// Unique returns a copy of u whose email carries a random suffix in the
// local part, so repeated runs against a shared API do not collide.
func Unique(u User) User {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	local, domain, ok := strings.Cut(u.Email, "@")
	if !ok {
		u.Email = u.Email + "." + suffix
		return u
	}
	u.Email = local + "." + suffix + "@" + domain
	return u
}

// Set is a named collection of fixture users.
type Set struct {
	users map[string]User
}

func NewSet(users map[string]User) *Set {
	s := &Set{users: make(map[string]User, len(users))}
	for name, u := range users {
		s.users[name] = u
	}
	return s
}

// Default returns the built-in users suite fixtures.
func Default() *Set {
	return NewSet(map[string]User{
		AdminUser: {
			Nome:          "Administrador Teste",
			Email:         "admin.teste@qa.com.br",
			Password:      "teste",
			Administrador: "true",
		},
		RegularUser: {
			Nome:          "Usuario Regular",
			Email:         "regular.teste@qa.com.br",
			Password:      "teste",
			Administrador: "false",
		},
		UpdateUser: {
			Nome:          "Usuario Para Atualizar",
			Email:         "atualizar.teste@qa.com.br",
			Password:      "teste",
			Administrador: "false",
		},
		DeleteUser: {
			Nome:          "Usuario Para Deletar",
			Email:         "deletar.teste@qa.com.br",
			Password:      "teste",
			Administrador: "false",
		},
		CaseSensitiveUser: {
			Nome:          "Usuario Case Sensitive",
			Email:         "Case.Sensitive@QA.com.br",
			Password:      "teste",
			Administrador: "false",
		},
		SpecialCharsUser: {
			Nome:          "Usuário com Acentuação & Símbolos",
			Email:         "especial.teste@qa.com.br",
			Password:      "t3st&!@#",
			Administrador: "false",
		},
	})
}

func (s *Set) Get(name string) (User, error) {
	u, ok := s.users[name]
	if !ok {
		return User{}, fmt.Errorf("%w: %s", ErrUnknownFixture, name)
	}
	return u, nil
}

func (s *Set) Len() int {
	return len(s.users)
}

// Names returns fixture names in setup order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.users))
	known := make(map[string]bool, len(SetupOrder))
	for _, name := range SetupOrder {
		known[name] = true
		if _, ok := s.users[name]; ok {
			names = append(names, name)
		}
	}
	var rest []string
	for name := range s.users {
		if !known[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// Unique applies Unique to every user in the set.
func (s *Set) Unique() *Set {
	out := &Set{users: make(map[string]User, len(s.users))}
	for name, u := range s.users {
		out.users[name] = Unique(u)
	}
	return out
}

// Resolve expands placeholders in every field. It fails on the first field
// that still holds an unresolved placeholder.
func (s *Set) Resolve(r *env.Resolver) (*Set, error) {
	out := &Set{users: make(map[string]User, len(s.users))}
	for _, name := range s.Names() {
		u := s.users[name]
		fields := []*string{&u.Nome, &u.Email, &u.Password, &u.Administrador}
		for _, f := range fields {
			if missing := r.GetUnresolvedVariables(*f); len(missing) > 0 {
				return nil, fmt.Errorf("fixture %s: unresolved placeholder %s", name, missing[0])
			}
			*f = r.Resolve(*f)
		}
		out.users[name] = u
	}
	return out, nil
}

// ParseError reports a fixture file that could not be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing fixtures %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads a fixture file. Files ending in .yaml or .yml are decoded as
// YAML, everything else as JSON.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures: %w", err)
	}

	var users map[string]User
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &users)
	default:
		err = json.Unmarshal(data, &users)
	}
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if len(users) == 0 {
		return nil, &ParseError{Path: path, Err: errors.New("no fixtures defined")}
	}
	for name, u := range users {
		if u.Administrador != "true" && u.Administrador != "false" {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("fixture %s: administrador must be \"true\" or \"false\"", name)}
		}
	}

	return NewSet(users), nil
}
