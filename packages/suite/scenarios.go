package suite

import (
	"context"
	nethttp "net/http"
	"strings"

	"github.com/abdul-hamid-achik/contractcheck/packages/fixtures"
	"github.com/abdul-hamid-achik/contractcheck/packages/usuarios"
	"github.com/sirupsen/logrus"
)

// All returns the built-in scenarios in run order: creation first, then
// deletion.
func All() []Scenario {
	return append(CreateScenarios(), DeleteScenarios()...)
}

// CreateScenarios cover POST /usuarios.
func CreateScenarios() []Scenario {
	return []Scenario{
		{
			ID:   "CR-001",
			Name: "[201] cadastro de usuário válido",
			Tags: []string{TagCreate, TagPositive},
			Run: func(ctx context.Context, e *Env) ([]Check, error) {
				u := fixtures.Unique(fixtures.User{
					Nome:          "Usuario Criado Pelo Teste",
					Email:         "criado@qa.com.br",
					Password:      "teste",
					Administrador: "false",
				})
				id, resp, err := e.Create(ctx, u)
				if err != nil {
					return nil, err
				}
				e.Fixture.Track(id)
				logRequest(e, "CR-001", nethttp.MethodPost, e.Client.URL(), resp.StatusCode)
				return []Check{e.Expect("create", nethttp.MethodPost, e.Client.URL(), resp, usuarios.CreateSuccess())}, nil
			},
		},
		{
			ID:   "CR-002",
			Name: "[400] cadastro com email já utilizado",
			Tags: []string{TagCreate, TagNegative},
			Run: func(ctx context.Context, e *Env) ([]Check, error) {
				existing, ok := e.Fixture.Find(func(CreatedUser) bool { return true })
				if !ok {
					return nil, Skip("no fixture user was created")
				}
				dup := existing.User
				dup.Nome = "Usuario Duplicado"
				id, resp, err := e.Create(ctx, dup)
				if err != nil {
					return nil, err
				}
				e.Fixture.Track(id)
				logRequest(e, "CR-002", nethttp.MethodPost, e.Client.URL(), resp.StatusCode)
				return []Check{e.Expect("duplicate email", nethttp.MethodPost, e.Client.URL(), resp, usuarios.DuplicateEmail())}, nil
			},
		},
	}
}

// DeleteScenarios cover DELETE /usuarios/{_id}, negatives first.
func DeleteScenarios() []Scenario {
	return []Scenario{
		deleteUnknown("CT-001", "[200] _id inexistente (string aleatória)", "ZZZnaoExiste123"),
		deleteUnknown("CT-002", "[200] _id numérico-like inexistente", "123456789"),
		deleteUnknown("CT-003", "[200] _id com caracteres especiais", "id@#$%^&*()"),
		deleteUnknown("CT-004", "[200] _id com espaços (trim não aplicado)", " id com espacos "),
		deleteUnknown("CT-005", "[200] _id muito longo", strings.Repeat("a", 1000)),
		deleteFixture("CT-006", "[200] exclusão bem-sucedida de usuário válido",
			byFixture(fixtures.DeleteUser), "no user to delete was created"),
		deleteFixture("CT-007", "[200] exclusão de usuário administrador",
			func(u CreatedUser) bool { return u.IsAdmin() }, "no admin user was created"),
		deleteFixture("CT-008", "[200] exclusão de usuário não-administrador",
			func(u CreatedUser) bool { return !u.IsAdmin() }, "no regular user was created"),
		{
			ID:       "CT-009",
			Name:     "[200] tentativa de exclusão de usuário já excluído",
			Tags:     []string{TagDelete, TagNegative},
			Consumes: true,
			Run: func(ctx context.Context, e *Env) ([]Check, error) {
				u, ok := e.Fixture.Get(fixtures.UpdateUser)
				if !ok {
					return nil, Skip("no user to update was created")
				}
				first, err := e.Delete(ctx, u.ID)
				if err != nil {
					return nil, err
				}
				e.Log.WithField("scenario", "CT-009").Infof("first delete: %d", first.StatusCode)

				check, err := e.DeleteExpect(ctx, "second delete", u.ID, usuarios.DeleteNone())
				if err != nil {
					return nil, err
				}
				logRequest(e, "CT-009", check.Method, check.URL, check.Status)
				return []Check{check}, nil
			},
		},
		deleteFixture("CT-010", "[200] exclusão com _id válido e encode no path",
			byFixture(fixtures.SpecialCharsUser), "no special characters user was created"),
	}
}

func byFixture(name string) func(CreatedUser) bool {
	return func(u CreatedUser) bool { return u.Fixture == name }
}

func deleteUnknown(id, name, userID string) Scenario {
	return Scenario{
		ID:   id,
		Name: name,
		Tags: []string{TagDelete, TagNegative},
		Run: func(ctx context.Context, e *Env) ([]Check, error) {
			check, err := e.DeleteExpect(ctx, "delete", userID, usuarios.DeleteNone())
			if err != nil {
				return nil, err
			}
			logRequest(e, id, check.Method, check.URL, check.Status)
			return []Check{check}, nil
		},
	}
}

func deleteFixture(id, name string, pred func(CreatedUser) bool, missing string) Scenario {
	return Scenario{
		ID:       id,
		Name:     name,
		Tags:     []string{TagDelete, TagPositive},
		Consumes: true,
		Run: func(ctx context.Context, e *Env) ([]Check, error) {
			u, ok := e.Fixture.Find(pred)
			if !ok {
				return nil, Skip("%s", missing)
			}
			check, err := e.DeleteExpect(ctx, "delete", u.ID, usuarios.DeleteSuccess())
			if err != nil {
				return nil, err
			}
			logRequest(e, id, check.Method, check.URL, check.Status)
			e.Log.WithField("scenario", id).Infof("deleted %s (%s)", u.Nome, u.Email)
			return []Check{check}, nil
		},
	}
}

func logRequest(e *Env, scenario, method, url string, status int) {
	e.Log.WithFields(logrus.Fields{
		"scenario": scenario,
		"method":   method,
		"url":      url,
		"status":   status,
	}).Info("request")
}
