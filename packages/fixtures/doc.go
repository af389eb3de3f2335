// Package fixtures provides the named users a suite run creates before its
// scenarios execute.
//
// A fixture file is a JSON or YAML object keyed by fixture name:
//
//	admin_user:
//	  nome: Administrador Teste
//	  email: admin.{{shortId()}}@qa.com.br
//	  password: teste
//	  administrador: "true"
//
// Values may contain {{...}} placeholders, expanded with an env.Resolver
// before the users are created.
package fixtures
