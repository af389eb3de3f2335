// Package env loads .env files and expands {{...}} placeholders in fixture
// templates.
//
// Placeholders may reference environment variables ({{$NAME}}), builtin
// functions ({{uuid()}}), values captured from created fixtures
// ({{admin_user._id}}) or plain variables ({{password}}).
package env
