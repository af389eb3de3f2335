// Package usuarios drives the ServeRest /usuarios resource and defines the
// response contracts the suite asserts against it.
package usuarios
