// Package mock serves a ServeRest compatible /usuarios API for offline
// suite runs and tests.
package mock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"time"

	"github.com/abdul-hamid-achik/contractcheck/packages/fixtures"
	"github.com/abdul-hamid-achik/contractcheck/packages/usuarios"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Messages the mock answers with in addition to the usuarios contracts.
const (
	MessageUserNotFound = "Usuário não encontrado"
	MessageInvalidJSON  = "JSON inválido"
)

// Server is a mock of the /usuarios resource
type Server struct {
	router *Router
	store  Store
	port   int
	delay  time.Duration
	log    logrus.FieldLogger
}

// Option is a functional option for Server
type Option func(*Server)

func WithPort(port int) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithDelay adds a delay to all responses
func WithDelay(delay time.Duration) Option {
	return func(s *Server) {
		s.delay = delay
	}
}

func WithStore(store Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Server) {
		s.log = l
	}
}

func NewServer(opts ...Option) *Server {
	s := &Server{
		router: NewRouter(),
		port:   3000,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = NewMemoryStore()
	}

	collection := "/" + usuarios.Resource
	s.router.Handle(http.MethodGet, collection, "listUsuarios", s.handleList)
	s.router.Handle(http.MethodPost, collection, "createUsuario", s.handleCreate)
	s.router.Handle(http.MethodGet, collection+"/{{id}}", "getUsuario", s.handleGet)
	s.router.Handle(http.MethodDelete, collection+"/{{id}}", "deleteUsuario", s.handleDelete)
	return s
}

func (s *Server) Store() Store {
	return s.store
}

// GetRoutes returns all registered routes
func (s *Server) GetRoutes() []*Route {
	return s.router.Routes()
}

// Handler returns the server as an http.Handler, for httptest or embedding.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handleRequest)
}

// Start starts the mock server
func (s *Server) Start() error {
	return s.StartWithContext(context.Background())
}

// StartWithContext starts the server and shuts it down when ctx is done.
func (s *Server) StartWithContext(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.log.Infof("Mock server starting on http://localhost:%d", s.port)
	for _, route := range s.router.Routes() {
		s.log.Debugf("  %s %s (%s)", route.Method, route.PathPattern, route.Name)
	}

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	setSecurityHeaders(rec.Header())

	route, params, pathMatched := s.router.Match(r.Method, r.URL.EscapedPath())
	switch {
	case route != nil:
		route.Handler(rec, r, params)
	case pathMatched:
		writeMessage(rec, http.StatusMethodNotAllowed,
			fmt.Sprintf("Não é possível realizar %s em %s. Acesse https://serverest.dev para ver as rotas disponíveis e como utilizá-las.", r.Method, r.URL.Path))
	default:
		writeMessage(rec, http.StatusNotFound, "Rota não encontrada")
	}

	s.log.WithFields(logrus.Fields{
		"method":   r.Method,
		"url":      r.URL.RequestURI(),
		"status":   rec.status,
		"duration": time.Since(start),
	}).Debug("mock request")
}

// setSecurityHeaders sets the headers ServeRest sends on every response.
func setSecurityHeaders(h http.Header) {
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-XSS-Protection", "1; mode=block")
	h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
	h.Set("X-Frame-Options", "SAMEORIGIN")
	h.Set("Access-Control-Allow-Origin", "*")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	body, _ := sjson.SetBytes([]byte(`{}`), "message", message)
	writeJSON(w, status, body)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	users, err := s.store.List(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	if users == nil {
		users = []Usuario{}
	}
	body, err := json.Marshal(struct {
		Quantidade int       `json:"quantidade"`
		Usuarios   []Usuario `json:"usuarios"`
	}{len(users), users})
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	data, err := io.ReadAll(r.Body)
	if err != nil || !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		writeMessage(w, http.StatusBadRequest, MessageInvalidJSON)
		return
	}

	u, problems := decodeUser(data)
	if problems != nil {
		writeJSON(w, http.StatusBadRequest, problems)
		return
	}

	rec, err := s.store.Create(r.Context(), u)
	if errors.Is(err, ErrEmailTaken) {
		writeMessage(w, http.StatusBadRequest, usuarios.MessageEmailInUse)
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}

	body, _ := sjson.SetBytes([]byte(`{}`), "message", usuarios.MessageCreated)
	body, _ = sjson.SetBytes(body, "_id", rec.ID)
	writeJSON(w, http.StatusCreated, body)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request, params map[string]string) {
	u, ok, err := s.store.Get(r.Context(), params["id"])
	if err != nil {
		s.internalError(w, err)
		return
	}
	if !ok {
		writeMessage(w, http.StatusBadRequest, MessageUserNotFound)
		return
	}
	body, err := json.Marshal(u)
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, params map[string]string) {
	removed, err := s.store.Delete(r.Context(), params["id"])
	if err != nil {
		s.internalError(w, err)
		return
	}
	if !removed {
		writeMessage(w, http.StatusOK, usuarios.MessageNoneDeleted)
		return
	}
	writeMessage(w, http.StatusOK, usuarios.MessageDeleted)
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.log.WithError(err).Error("mock store failure")
	writeMessage(w, http.StatusInternalServerError, "Erro interno")
}

// decodeUser validates a create body the way ServeRest does. On failure it
// returns a JSON object mapping each offending field to a message.
func decodeUser(data []byte) (fixtures.User, []byte) {
	problems := []byte(`{}`)
	failed := false
	fail := func(field, message string) {
		if gjson.GetBytes(problems, field).Exists() {
			return
		}
		problems, _ = sjson.SetBytes(problems, field, message)
		failed = true
	}

	values := make(map[string]string, 4)
	for _, field := range []string{"nome", "email", "password", "administrador"} {
		v := gjson.GetBytes(data, field)
		switch {
		case !v.Exists():
			fail(field, field+" é obrigatório")
		case v.Type != gjson.String:
			fail(field, field+" deve ser uma string")
		case v.Str == "":
			fail(field, field+" não pode ficar em branco")
		default:
			values[field] = v.Str
		}
	}

	if email, ok := values["email"]; ok {
		if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
			fail("email", "email deve ser um email válido")
		}
	}
	if adm, ok := values["administrador"]; ok && adm != "true" && adm != "false" {
		fail("administrador", "administrador deve ser 'true' ou 'false'")
	}

	if failed {
		return fixtures.User{}, problems
	}
	return fixtures.User{
		Nome:          values["nome"],
		Email:         values["email"],
		Password:      values["password"],
		Administrador: values["administrador"],
	}, nil
}
