// Package cli is the terminal UI for regform: the same validation engine and
// submission coordinator as the web form, driven by interactive prompts.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yanizio/regform/internal/config"
	"github.com/yanizio/regform/internal/countries"
	"github.com/yanizio/regform/internal/registration"
	"github.com/yanizio/regform/internal/usersapi"
	"github.com/yanizio/regform/internal/vault"
)

// App carries the process-level collaborators.  Zero fields get defaults,
// which lets tests inject a scripted Prompter and an httptest client.
type App struct {
	Prompter Prompter
	Out      io.Writer
	Err      io.Writer
	HTTP     *http.Client
}

// settings is what a command needs after flags and config are merged.
type settings struct {
	root         string
	apiURL       string
	countriesURL string
	token        string
	timeout      time.Duration
	logLevel     string
}

// NewRootCmd builds the regcli command tree.
func NewRootCmd(app *App) *cobra.Command {
	if app.Prompter == nil {
		app.Prompter = NewSurveyPrompter()
	}
	if app.Out == nil {
		app.Out = os.Stdout
	}
	if app.Err == nil {
		app.Err = os.Stderr
	}

	var s settings
	root := &cobra.Command{
		Use:           "regcli",
		Short:         "Fill in and submit the user registration form from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			installLogger(app.Err, s.logLevel)
			return s.merge(cmd)
		},
	}
	root.SetOut(app.Out)
	root.SetErr(app.Err)

	pf := root.PersistentFlags()
	pf.StringVar(&s.root, "root", "", "project root holding conf/global.yaml (default: discovered)")
	pf.StringVar(&s.apiURL, "api-url", "", "users API base URL (overrides api.base_url)")
	pf.StringVar(&s.countriesURL, "countries-url", "", "country list URL (overrides countries.url)")
	pf.StringVar(&s.token, "token", "", "bearer token for the users API (overrides api.token)")
	pf.DurationVar(&s.timeout, "timeout", 0, "users API timeout, 0 for none (overrides api.timeout)")
	pf.StringVar(&s.logLevel, "log-level", "warn", "log level for stderr diagnostics")

	root.AddCommand(
		newRegisterCmd(app, &s),
		newSubmitCmd(app, &s),
		newCountriesCmd(app, &s),
	)
	return root
}

// merge layers config file values under explicitly set flags.
func (s *settings) merge(cmd *cobra.Command) error {
	root := s.root
	if root == "" {
		root = config.RootDir()
	}
	if _, err := os.Stat(filepath.Join(root, "conf", "global.yaml")); err == nil {
		cfg, err := loadConfig(cmd.Context(), root)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if !flags.Changed("api-url") {
			s.apiURL = cfg.API.BaseURL
		}
		if !flags.Changed("countries-url") {
			s.countriesURL = cfg.Countries.URL
		}
		if !flags.Changed("token") {
			s.token = cfg.API.Token
		}
		if !flags.Changed("timeout") {
			s.timeout = cfg.API.Timeout
		}
	}
	if s.countriesURL == "" {
		s.countriesURL = countries.DefaultURL
	}
	return nil
}

func loadConfig(ctx context.Context, root string) (*config.Config, error) {
	var secrets config.SecretGetter
	if os.Getenv("VAULT_ADDR") != "" {
		vc, err := vault.New(ctx)
		if err != nil {
			return nil, err
		}
		secrets = vc
	}
	return config.LoadFrom(ctx, root, secrets)
}

func (s *settings) submitter(app *App) (registration.Submitter, error) {
	if s.apiURL == "" {
		return nil, fmt.Errorf("no users API configured: pass --api-url or set api.base_url")
	}
	return usersapi.New(s.apiURL, usersapi.Options{
		Token:   s.token,
		Timeout: s.timeout,
		HTTP:    app.HTTP,
	})
}

func (s *settings) provider(app *App) *countries.Provider {
	return countries.New(s.countriesURL, app.HTTP)
}

// installLogger routes zap to stderr at level; the CLI keeps no log files.
func installLogger(w io.Writer, level string) {
	lvl := zapcore.WarnLevel
	_ = lvl.UnmarshalText([]byte(level))
	enc := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), lvl)
	zap.ReplaceGlobals(zap.New(core))
}
