package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"genelink/internal/config"
	"genelink/internal/dataset"
	"genelink/internal/log"
	"genelink/internal/server"
	"genelink/internal/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dataset HTTP server",
	Long: `Serves stored datasets over HTTP with token authentication. Clients
log in with POST /login and fetch cohorts from GET /datasets.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr from config)")
	serveCmd.Flags().Bool("import", false, "import the manifest's datasets into the database before serving")
	serveCmd.Flags().String("create-user", "", "create or update a user (username:password) and exit")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := config.ValidateServer(cfg.Server); err != nil {
		return fmt.Errorf("invalid server configuration: %w", err)
	}

	dbPath := cfg.Server.DBPath
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}
	db, err := server.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	store := server.NewStore(db)

	if spec, _ := cmd.Flags().GetString("create-user"); spec != "" {
		return createUser(store, spec)
	}

	if cfg.Server.JWTSecret == "" {
		return errors.New("server.jwt_secret must be set to serve datasets")
	}
	ttl := time.Duration(cfg.Server.TokenTTLMinutes) * time.Minute
	auth, err := server.NewAuth(cfg.Server.JWTSecret, ttl)
	if err != nil {
		return fmt.Errorf("configuring auth: %w", err)
	}

	if doImport, _ := cmd.Flags().GetBool("import"); doImport {
		if err := importDatasets(store); err != nil {
			return err
		}
	}

	provider, err := buildTracing()
	if err != nil {
		return fmt.Errorf("configuring tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.Warn(log.CatServer, "Tracing shutdown failed", "error", err)
		}
	}()

	addr := cfg.Server.Addr
	if flagAddr, _ := cmd.Flags().GetString("addr"); flagAddr != "" {
		addr = flagAddr
	}

	var middleware func(http.Handler) http.Handler
	if provider.Enabled() {
		middleware = tracing.HTTPMiddleware(provider.Tracer())
	}

	srv, err := server.NewServer(server.Config{
		Addr:       addr,
		Store:      store,
		Auth:       auth,
		Middleware: middleware,
	})
	if err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "genelink server listening on port %d\n", srv.Port())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info(log.CatServer, "Received signal, shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return <-errCh
}

// buildTracing translates the tracing section of the config into a provider.
func buildTracing() (*tracing.Provider, error) {
	tc := tracing.DefaultConfig()
	tc.Enabled = cfg.Tracing.Enabled
	if cfg.Tracing.Exporter != "" {
		tc.Exporter = cfg.Tracing.Exporter
	}
	tc.FilePath = cfg.Tracing.FilePath
	if tc.FilePath == "" {
		tc.FilePath = config.DefaultTracesFilePath()
	}
	if cfg.Tracing.OTLPEndpoint != "" {
		tc.OTLPEndpoint = cfg.Tracing.OTLPEndpoint
	}
	if cfg.Tracing.SampleRate > 0 {
		tc.SampleRate = cfg.Tracing.SampleRate
	}
	return tracing.NewProvider(tc)
}

// importDatasets loads every manifest entry and stores it in the database.
func importDatasets(store *server.Store) error {
	manifestPath := cfg.Manifest
	if manifestPath == "" {
		manifestPath = "manifest.yaml"
	}
	manifest, err := dataset.LoadManifest(manifestPath)
	if err != nil {
		return fmt.Errorf("loading manifest for import: %w", err)
	}

	for _, entry := range manifest.Datasets {
		ds, err := dataset.Load(entry)
		if err != nil {
			return fmt.Errorf("importing %q: %w", entry.Name, err)
		}
		if err := store.SaveDataset(entry.Name, entry.Disease, ds); err != nil {
			return fmt.Errorf("importing %q: %w", entry.Name, err)
		}
		log.Info(log.CatServer, "Imported dataset",
			"name", entry.Name, "mutations", len(ds.Mutations), "samples", len(ds.Samples))
	}
	return nil
}

func createUser(store *server.Store, spec string) error {
	username, password, ok := splitUserSpec(spec)
	if !ok {
		return errors.New("--create-user expects username:password")
	}
	if err := store.UpsertUser(username, password); err != nil {
		return fmt.Errorf("creating user %q: %w", username, err)
	}
	log.Info(log.CatServer, "User created", "user", username)
	return nil
}

func splitUserSpec(spec string) (username, password string, ok bool) {
	for i := 0; i < len(spec); i++ {
		if spec[i] == ':' {
			if i == 0 || i == len(spec)-1 {
				return "", "", false
			}
			return spec[:i], spec[i+1:], true
		}
	}
	return "", "", false
}
