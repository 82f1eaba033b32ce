package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wtx/internal/notify"
	"github.com/desertthunder/wtx/internal/plex"
	"github.com/desertthunder/wtx/internal/preferences"
	"github.com/desertthunder/wtx/internal/repositories"
	"github.com/desertthunder/wtx/internal/services"
	"github.com/desertthunder/wtx/internal/shared"
	"github.com/desertthunder/wtx/internal/tasks"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      *bufio.Reader
	stdin      io.Reader
	fs         afero.Fs

	backend *repositories.Backend
	api     *services.APIService // guarded by the stored credential
	authAPI *services.APIService // /auth routes only
	session *services.Session
	notes   *notify.Center
	prefs   *preferences.Store
	gateway *tasks.Gateway
	bridge  *plex.Bridge
	printer *notePrinter
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Backend    *repositories.Backend
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	FS         afero.Fs
	// PlexOptions are passed to the plex bridge after the defaults.
	PlexOptions []plex.Option
	// NotifyOptions are passed to the notification center after the defaults.
	NotifyOptions []notify.Option
}

// NewRunner creates a new Runner with the provided configuration.
//
// Without a Backend the runner keeps its storage in memory.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.Backend.Timeout()}
	}
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	if opts.Backend == nil {
		fs := repositories.NewFileStore(afero.NewMemMapFs(), "wtx.json")
		opts.Backend = &repositories.Backend{Storage: fs, Snapshots: fs}
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      bufio.NewReader(opts.Input),
		stdin:      opts.Input,
		fs:         opts.FS,
		backend:    opts.Backend,
	}
	r.wire(opts)
	return r
}

func (r *Runner) wire(opts RunnerOpts) {
	cfg := r.config.Backend
	storage := r.backend.Storage

	apiOpts := []services.APIOption{
		services.WithRateLimit(cfg.RateLimit, cfg.Burst),
		services.WithRetries(cfg.Retries, 200*time.Millisecond),
		services.WithAPILogger(shared.WithLogger(r.logger, "component", "api")),
	}

	guard := services.NewAuthGuard(r.httpClient.Transport, storage, r.loginRequired, r.logger)
	guarded := guard.Client()
	guarded.Timeout = r.httpClient.Timeout

	r.api = services.NewAPIService(cfg.BaseURL, guarded, apiOpts...)
	r.authAPI = services.NewAPIService(cfg.BaseURL, r.httpClient, apiOpts...)
	r.session = services.NewSession(r.authAPI, storage, shared.WithLogger(r.logger, "component", "session"))

	notifyOpts := append([]notify.Option{
		notify.WithDelay(r.config.Notify.Delay()),
		notify.WithLogger(shared.WithLogger(r.logger, "component", "notify")),
	}, opts.NotifyOptions...)
	r.notes = notify.NewCenter(notifyOpts...)

	r.prefs = preferences.New(storage, preferences.WithLogger(shared.WithLogger(r.logger, "component", "preferences")))
	r.prefs.Load()

	r.gateway = tasks.NewGateway(r.api, tasks.NewCache(), r.notes,
		tasks.WithCredentials(r.session),
		tasks.WithSnapshots(r.backend.Snapshots),
		tasks.WithLogger(shared.WithLogger(r.logger, "component", "gateway")),
	)

	plexOpts := append([]plex.Option{
		plex.WithDevice(services.PlexDeviceFromConfig(r.config.Plex)),
		plex.WithPollInterval(r.config.Plex.PollInterval()),
		plex.WithHTTPClient(r.httpClient),
		plex.WithOpener(plex.BrowserOpener{Fallback: r.output}),
		plex.WithLogger(shared.WithLogger(r.logger, "component", "plex")),
	}, opts.PlexOptions...)
	r.bridge = plex.NewBridge(storage, r.session, plexOpts...)

	r.session.OnLogout(r.gateway.ClearAll)
	r.session.OnLogout(func() {
		if err := r.prefs.Reset(); err != nil {
			r.logger.Warn("failed to reset preferences", "error", err)
		}
	})

	r.printer = newNotePrinter(r.output, r.prefs.Theme())
	r.notes.Subscribe(r.printer.print)
	r.prefs.SubscribeTheme(r.printer.setTheme)
}

func (r *Runner) loginRequired() {
	r.logger.Warn("login required, run `wtx auth login`")
}

// exitCode maps a command error to the process exit status. Missing and
// rejected credentials exit with 2.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, shared.ErrNotAuthenticated),
		errors.Is(err, shared.ErrNoCredential),
		errors.Is(err, shared.ErrUnauthorized):
		return 2
	default:
		return 1
	}
}

// Close waits for background gateway work to finish.
func (r *Runner) Close() {
	r.gateway.Wait()
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, watchedCommand, playedCommand, activityCommand, tagCommand,
		followCommand, prefsCommand, settingsCommand, featuresCommand, jellyfinCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// load fills the entry cache from the server.
func (r *Runner) load(ctx context.Context) error {
	res := r.gateway.Load(ctx)
	if errors.Is(res.Err, shared.ErrNoCredential) {
		return fmt.Errorf("%w: run `wtx auth login` first", shared.ErrNotAuthenticated)
	}
	if errors.Is(res.Err, shared.ErrUnauthorized) {
		return fmt.Errorf("%w: session expired, run `wtx auth login` again: %w", shared.ErrNotAuthenticated, res.Err)
	}
	if res.Err != nil {
		return fmt.Errorf("failed to load watched list: %w", res.Err)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
