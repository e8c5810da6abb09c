package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/comigor/nexucore/internal/attach"
	"github.com/comigor/nexucore/internal/chart"
	"github.com/comigor/nexucore/internal/chat"
	"github.com/comigor/nexucore/internal/config"
	"github.com/comigor/nexucore/internal/history"
	"github.com/comigor/nexucore/internal/llm"
	"github.com/comigor/nexucore/internal/logger"
	"github.com/comigor/nexucore/internal/mcptools"
	"github.com/comigor/nexucore/internal/render"
	"github.com/comigor/nexucore/internal/segment"
	"github.com/comigor/nexucore/internal/server"
	"github.com/comigor/nexucore/web"
)

var version = "dev"

const usage = `usage: nexucore <command> [flags]

commands:
  serve   run the HTTP API and web client
  ask     send one prompt and print the answer
  mcp     expose the rendering tools over MCP stdio`

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "serve":
		err = serve(ctx, cfg)
	case "ask":
		err = ask(ctx, cfg, os.Args[2:])
	case "mcp":
		err = serveMCP(cfg)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.L.Error("Command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func newManager(cfg *config.Config, store chat.Store, opts ...chat.Option) (*chat.Manager, error) {
	client, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return nil, err
	}
	gen := llm.NewGenerator(client, cfg.LLM.Model)
	opts = append(opts, chat.WithSystemPrompt(cfg.LLM.SystemPrompt))
	return chat.NewManager(store, gen, opts...), nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	store := history.Open(cfg.Storage.Path)
	defer func() {
		if err := store.Close(); err != nil {
			logger.L.Warn("Failed to close conversation store", "error", err)
		}
	}()

	hub := server.NewHub(cfg.Server.AllowedOrigins)
	mgr, err := newManager(cfg, store, chat.WithNotifier(hub))
	if err != nil {
		return err
	}
	if err := mgr.Load(ctx); err != nil {
		return fmt.Errorf("load conversations: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           server.New(*cfg, mgr, hub, web.Handler()).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L.Info("Starting server", "address", srv.Addr, "model", cfg.LLM.Model)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.L.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type fileList []string

func (f *fileList) String() string { return strings.Join(*f, ",") }

func (f *fileList) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func ask(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	mode := fs.String("mode", string(chat.ModeGeneral), "focus mode")
	persona := fs.String("persona", string(chat.PersonaUser), "user or developer")
	aspect := fs.String("aspect", "", "image aspect ratio hint")
	outDir := fs.String("out", ".", "directory for exported charts and previews")
	wrap := fs.Int("wrap", 100, "markdown word wrap")
	var files fileList
	fs.Var(&files, "file", "attach a file (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	prompt := strings.Join(fs.Args(), " ")

	logger.SetOutput(os.Stderr)
	if err := cfg.Validate(); err != nil {
		return err
	}

	sources := make([]attach.Source, len(files))
	for i, p := range files {
		sources[i] = attach.FromPath(p)
	}
	encoded, err := attach.Encode(ctx, sources)
	if err != nil {
		return err
	}

	mgr, err := newManager(cfg, history.NewStore(history.NewMemory()))
	if err != nil {
		return err
	}
	opts := chat.Options{Mode: chat.ParseMode(*mode), Persona: chat.ParsePersona(*persona)}
	if *aspect != "" {
		opts.ImageConfig = &chat.ImageConfig{AspectRatio: *aspect}
	}
	conv := mgr.Create(ctx, opts)

	res, err := mgr.Submit(ctx, conv.ID, chat.TurnInput{Message: prompt, Files: encoded, Options: opts})
	if err != nil {
		return err
	}

	tc, err := render.NewTerminalComposer(os.Stdout, *outDir, *wrap)
	if err != nil {
		return err
	}
	tc.App = cfg.App.Name
	if err := tc.Compose(segment.Split(res.Reply.Text)); err != nil {
		return err
	}
	if res.Failed {
		return errors.New("model request failed")
	}
	return nil
}

func serveMCP(cfg *config.Config) error {
	logger.SetOutput(os.Stderr)
	tools := mcptools.Default(chart.Exporter{App: cfg.App.Name})
	return mcpserver.ServeStdio(tools.NewServer(cfg.App.Name, version))
}
