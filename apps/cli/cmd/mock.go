package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/contractcheck/packages/mock"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	mockPortFlag    int
	mockDelayFlag   string
	mockStoreFlag   string
	mockVerboseFlag int
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Serve a local /usuarios API",
	Long: `Start a ServeRest compatible /usuarios API for running the suite
offline.

The mock server:
- Serves GET and POST /usuarios, GET and DELETE /usuarios/{_id}
- Sends the security headers the contracts check for
- Rejects duplicate emails with 400
- Answers 200 "Nenhum registro excluído" for unknown ids
- Keeps users in memory, or in SQLite with --db

Examples:
  contractcheck mock
  contractcheck mock --port 3000 --delay 100ms
  contractcheck mock --db sqlite://./usuarios.db -v`,
	Args: cobra.NoArgs,
	RunE: mockCommand,
}

func init() {
	mockCmd.Flags().IntVarP(&mockPortFlag, "port", "p", getEnvInt("CONTRACTCHECK_MOCK_PORT", 3000), "Port to run the mock server on (env: CONTRACTCHECK_MOCK_PORT)")
	mockCmd.Flags().StringVarP(&mockDelayFlag, "delay", "d", "0", "Delay to add to all responses (e.g., 100ms, 1s)")
	mockCmd.Flags().StringVar(&mockStoreFlag, "db", getEnvString("CONTRACTCHECK_MOCK_DB", ""), "SQLite connection string, e.g. sqlite://./usuarios.db (default: in memory) (env: CONTRACTCHECK_MOCK_DB)")
	mockCmd.Flags().CountVarP(&mockVerboseFlag, "verbose", "v", "Log every request")
}

func newMockServer(log logrus.FieldLogger, db string, opts ...mock.Option) (*mock.Server, error) {
	opts = append(opts, mock.WithLogger(log))
	if db != "" {
		store, err := mock.OpenSQLite(db)
		if err != nil {
			return nil, err
		}
		opts = append(opts, mock.WithStore(store))
	}
	return mock.NewServer(opts...), nil
}

// startMock serves the mock API on a free loopback port and returns its
// base URL.
func startMock(log logrus.FieldLogger, db string) (string, func(), error) {
	srv, err := newMockServer(log, db)
	if err != nil {
		return "", nil, err
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		_ = srv.Store().Close()
		return "", nil, err
	}
	httpSrv := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		_ = httpSrv.Serve(ln)
	}()

	stop := func() {
		_ = httpSrv.Close()
		_ = srv.Store().Close()
	}
	return "http://" + ln.Addr().String(), stop, nil
}

func mockCommand(cmd *cobra.Command, args []string) error {
	var delay time.Duration
	if mockDelayFlag != "0" {
		var err error
		delay, err = time.ParseDuration(mockDelayFlag)
		if err != nil {
			return usageError(fmt.Errorf("invalid delay value %q: %w", mockDelayFlag, err))
		}
	}

	log := newLogger(mockVerboseFlag+1, false)
	server, err := newMockServer(log, mockStoreFlag,
		mock.WithPort(mockPortFlag),
		mock.WithDelay(delay),
	)
	if err != nil {
		return withCode(ExitConfigError, fmt.Errorf("opening mock store: %w", err))
	}
	defer server.Store().Close()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Info("Shutting down mock server...")
		cancel()
	}()

	return server.StartWithContext(ctx)
}
