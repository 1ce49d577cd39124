package runtime

import (
	"context"
	"fmt"
	"os"

	"reaper.dev/reaper/internal/config"
	"reaper.dev/reaper/internal/demo"
	"reaper.dev/reaper/internal/engine"
	reapererrors "reaper.dev/reaper/internal/errors"
	"reaper.dev/reaper/internal/git"
	"reaper.dev/reaper/internal/github"
	"reaper.dev/reaper/internal/tui"
)

// EnvDemo switches every command to the in-memory demo repository
const EnvDemo = "REAPER_DEMO"

// Context provides access to the engine, output and configuration for commands
type Context struct {
	Engine   *engine.Engine
	Splog    *tui.Splog
	Config   *config.Config
	RepoRoot string
	RepoName string
	// Runner runs git in the repository; nil in demo mode
	Runner *git.CommandRunner
}

// Options are the command line settings that shape a Context
type Options struct {
	// Dir is the directory to look for a repository in; empty means the working directory
	Dir        string
	ConfigPath string
	// Protected adds branch names to the protected set
	Protected []string
	// Remote replaces the default remote
	Remote  string
	NoFetch bool
	// Splog replaces the stdout logger; tests pass one writing to a buffer
	Splog *tui.Splog
}

// NewContext creates a context around an existing engine with default configuration
func NewContext(eng *engine.Engine) *Context {
	return &Context{
		Engine: eng,
		Splog:  tui.NewSplog(),
		Config: config.DefaultConfig(),
	}
}

// IsDemoMode returns true if REAPER_DEMO environment variable is set
func IsDemoMode() bool {
	return os.Getenv(EnvDemo) != ""
}

// GetContext builds the context for a command: configuration from every
// layer, the logger, and an engine over the repository in opts.Dir (or the
// demo repository). The engine is not loaded yet.
func GetContext(ctx context.Context, opts Options) (*Context, error) {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	splog := opts.Splog
	if splog == nil {
		splog = newSplog()
	}

	if IsDemoMode() {
		applyOptions(cfg, opts)
		gw := demo.NewGateway()
		gw.Delay = demo.Latency
		splog.Debug("demo mode: using the in-memory repository")
		return &Context{
			Engine:   newEngine(gw, cfg, splog),
			Splog:    splog,
			Config:   cfg,
			RepoName: gw.RepoName(ctx),
		}, nil
	}

	if err := git.CheckGitAvailable(); err != nil {
		return nil, err
	}

	runner := git.NewCommandRunner(opts.Dir).WithTimeout(cfg.CommandTimeout)
	gw := git.NewGateway(runner)
	if !gw.IsRepository(ctx) {
		return nil, reapererrors.ErrNotARepository
	}

	repoRoot, err := git.RepoRoot(opts.Dir)
	if err != nil {
		// go-git cannot open every layout git accepts
		repoRoot, err = runner.Run(ctx, "rev-parse", "--show-toplevel")
		if err != nil {
			return nil, fmt.Errorf("failed to get repo root: %w", err)
		}
	}

	repoConfig, err := config.GetRepoConfig(repoRoot)
	if err != nil {
		splog.Warn("Ignoring repository config: %v", err)
	} else {
		cfg.ApplyRepo(repoConfig)
	}
	applyOptions(cfg, opts)

	if cfg.GitHubProtection {
		addGitHubProtection(ctx, cfg, runner, splog)
	}

	return &Context{
		Engine:   newEngine(gw, cfg, splog),
		Splog:    splog,
		Config:   cfg,
		RepoRoot: repoRoot,
		RepoName: gw.RepoName(ctx),
		Runner:   runner,
	}, nil
}

// Close releases the log file
func (c *Context) Close() error {
	if c.Splog == nil {
		return nil
	}
	return c.Splog.Close()
}

func applyOptions(cfg *config.Config, opts Options) {
	cfg.AddProtected(opts.Protected...)
	if opts.Remote != "" {
		cfg.DefaultRemote = opts.Remote
	}
	if opts.NoFetch {
		cfg.FetchOnStart = false
	}
}

func newEngine(gw git.Gateway, cfg *config.Config, splog *tui.Splog) *engine.Engine {
	return engine.NewEngine(gw, engine.Options{
		Protected:     engine.NewProtectedSet(cfg.ProtectedBranches...),
		DefaultRemote: cfg.DefaultRemote,
		ForceLocal:    cfg.ForceLocalDelete,
		Logger:        splog,
	})
}

func newSplog() *tui.Splog {
	splog, err := tui.NewSplogWithConfig(os.Stdout, tui.GetLogFilePath())
	if err != nil {
		splog = tui.NewSplog()
		splog.Debug("file logging disabled: %v", err)
	}
	return splog
}

// addGitHubProtection adds the branches GitHub protects to the protected set.
// Failures only cost the extra safety net, so they are logged and ignored.
func addGitHubProtection(ctx context.Context, cfg *config.Config, runner *git.CommandRunner, splog *tui.Splog) {
	source, err := github.NewProtectionSource(ctx, runner, cfg.DefaultRemote)
	if err != nil {
		splog.Debug("GitHub protection unavailable: %v", err)
		return
	}
	names, err := source.ProtectedBranches(ctx)
	if err != nil {
		splog.Warn("Could not list protected branches on GitHub: %v", err)
		return
	}
	owner, repo := source.GetOwnerRepo()
	splog.Debug("GitHub protects %d branch(es) in %s/%s", len(names), owner, repo)
	cfg.AddProtected(names...)
}
