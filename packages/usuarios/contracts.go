package usuarios

import (
	"net/http"

	"github.com/abdul-hamid-achik/contractcheck/packages/contract"
	"github.com/abdul-hamid-achik/contractcheck/packages/schema"
)

// Response messages returned by the API.
const (
	MessageCreated     = "Cadastro realizado com sucesso"
	MessageDeleted     = "Registro excluído com sucesso"
	MessageNoneDeleted = "Nenhum registro excluído"
	MessageEmailInUse  = "Este email já está sendo usado"
)

var (
	// MessageSchema describes {"message": string} bodies. Extra fields are
	// allowed.
	MessageSchema = schema.MustObject(
		schema.Required("message"),
		schema.Property("message", schema.TypeString),
	)

	// CreatedSchema describes the POST /usuarios success body.
	CreatedSchema = schema.MustObject(
		schema.Required("message", "_id"),
		schema.Property("message", schema.TypeString),
		schema.Property("_id", schema.TypeString),
	)
)

// TypicalJSONHeaders are the headers every /usuarios response carries.
func TypicalJSONHeaders() []contract.HeaderMatcher {
	return []contract.HeaderMatcher{
		{Name: "Content-Type", Kind: contract.MatchContains, Value: "application/json"},
		{Name: "X-Content-Type-Options", Kind: contract.MatchExact, Value: "nosniff"},
		{Name: "X-XSS-Protection", Kind: contract.MatchExact, Value: "1; mode=block"},
		{Name: "Strict-Transport-Security", Kind: contract.MatchContains, Value: "max-age=15552000"},
	}
}

// CreateSuccess is the contract of a 201 from POST /usuarios.
func CreateSuccess() *contract.HTTPContract {
	return contract.New(
		contract.ExpectStatus(http.StatusCreated),
		contract.ExpectHeaders(TypicalJSONHeaders()...),
		contract.ExpectBody(CreatedSchema),
		contract.ExpectMessage(MessageCreated),
	)
}

// DeleteSuccess is the contract of deleting an existing user.
func DeleteSuccess() *contract.HTTPContract {
	return deleteContract(MessageDeleted)
}

// DeleteNone is the contract of deleting an id that matches no user. The
// API answers 200, not 404.
func DeleteNone() *contract.HTTPContract {
	return deleteContract(MessageNoneDeleted)
}

func deleteContract(message string) *contract.HTTPContract {
	return contract.New(
		contract.ExpectStatus(http.StatusOK),
		contract.ExpectHeaders(TypicalJSONHeaders()...),
		contract.ExpectBody(MessageSchema),
		contract.ExpectMessage(message),
	)
}

// DuplicateEmail is the contract of creating a user whose email is taken.
func DuplicateEmail() *contract.HTTPContract {
	return contract.New(
		contract.ExpectStatus(http.StatusBadRequest),
		contract.ExpectHeaders(TypicalJSONHeaders()...),
		contract.ExpectBody(MessageSchema),
		contract.ExpectMessage(MessageEmailInUse),
	)
}
