package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/desertthunder/wtx/internal/plex"
	"github.com/desertthunder/wtx/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin exchanges a username and password for a session credential.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	username := cmd.String("username")
	if username == "" {
		var err error
		if username, err = r.readLine("Username"); err != nil {
			return err
		}
	}
	password, err := r.readSecret("Password")
	if err != nil {
		return err
	}

	login := r.session.Login
	switch {
	case cmd.Bool("register"):
		login = r.session.Register
	case cmd.Bool("jellyfin"):
		login = r.session.LoginJellyfin
	}

	r.logger.Info("logging in", "username", username)
	if err := login(ctx, username, password); err != nil {
		return err
	}
	return r.writePlain("✓ Logged in as %s\n", username)
}

// AuthLogout clears the credential and every piece of client state tied to it.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.session.Logout(); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out\n")
}

type authStatus struct {
	LoggedIn  bool     `json:"loggedIn"`
	Username  string   `json:"username,omitempty"`
	Type      string   `json:"type,omitempty"`
	ExpiresAt string   `json:"expiresAt,omitempty"`
	Providers []string `json:"providers,omitempty"`
	Signup    bool     `json:"signupEnabled"`
}

// AuthStatus reports the stored credential and the server's login methods.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	status := authStatus{LoggedIn: r.session.LoggedIn()}

	if status.LoggedIn {
		if claims, err := r.session.Claims(); err != nil {
			r.logger.Warn("stored credential is not a readable token", "error", err)
		} else {
			status.Username = claims.Username
			status.Type = claims.Type.String()
			if claims.ExpiresAt != nil {
				status.ExpiresAt = claims.ExpiresAt.Format("2006-01-02 15:04")
			}
		}
	}

	if p, err := r.session.Providers(ctx); err != nil {
		r.logger.Warn("failed to fetch login methods", "error", err)
	} else {
		status.Providers = p.Available
		status.Signup = p.SignupEnabled
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, cmd.Bool("pretty"))
	}

	if !status.LoggedIn {
		r.writePlain("Authentication: ✗ Not logged in\n")
	} else {
		r.writePlain("Authentication: ✓ Logged in\n")
		if status.Username != "" {
			r.writePlain("User: %s (%s)\n", status.Username, status.Type)
		}
		if status.ExpiresAt != "" {
			r.writePlain("Expires: %s\n", status.ExpiresAt)
		}
	}
	if len(status.Providers) > 0 {
		r.writePlain("Login methods: %v\n", status.Providers)
	}
	return nil
}

// AuthPlex runs the plex.tv PIN flow in the browser and logs in with the result.
func (r *Runner) AuthPlex(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	unsubscribe := r.bridge.Subscribe(func(s plex.State) {
		r.logger.Debug("plex login", "state", s)
	})
	defer unsubscribe()

	r.writePlain("Waiting for plex.tv approval in the browser (Ctrl+C to cancel)...\n")
	if err := r.bridge.Login(ctx); err != nil {
		if plex.IsCancelled(err) {
			return r.writePlain("✗ Plex login cancelled\n")
		}
		return err
	}
	return r.writePlain("✓ Logged in with Plex\n")
}

// AuthPassword changes the account password.
func (r *Runner) AuthPassword(ctx context.Context, cmd *cli.Command) error {
	current, err := r.readSecret("Current password")
	if err != nil {
		return err
	}
	next, err := r.readSecret("New password")
	if err != nil {
		return err
	}
	confirm, err := r.readSecret("Confirm new password")
	if err != nil {
		return err
	}
	if next != confirm {
		return fmt.Errorf("%w: passwords do not match", shared.ErrInvalidInput)
	}

	return r.gateway.ChangePassword(ctx, current, next).Err
}

// AuthImport stores the credential carried by a request copied from the
// browser's devtools as cURL.
func (r *Runner) AuthImport(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var curlReq *shared.CurlRequest
	var err error

	if curlFile != "" {
		if curlReq, err = shared.ParseCurlFile(curlFile); err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		if curlReq, err = shared.ParseCurlCommand([]byte(curlCmd)); err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	token, err := curlReq.Token()
	if err != nil {
		return err
	}
	if err := r.session.SetToken(token); err != nil {
		return err
	}

	r.writePlain("✓ Session imported\n")
	if base, err := curlReq.BaseURL(); err == nil && base != r.config.Backend.BaseURL {
		r.writePlainln("Next steps:")
		r.writePlain("1. Update config.toml with: backend.base_url = \"%s\"\n", base)
		r.writePlain("   or export WTX_BASE_URL=%s\n", base)
	}
	return nil
}
