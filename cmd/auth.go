package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// AuthLogin exchanges credentials for a token pair and stores the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")
	password := cmd.String("password")
	remember := cmd.Bool("remember")

	r.logger.Infof("signing in as %v", email)

	if err := r.api.Login(ctx, email, password, remember); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if remember {
		r.writePlain("✓ Signed in, session saved\n")
	} else {
		r.writePlain("✓ Signed in for this run only\n")
	}

	if remember && r.db == nil {
		r.writePlain("Note: run 'elib setup database' so the session survives restarts\n")
	}

	return nil
}

// AuthRegister creates an account and signs in when the backend returns
// a token pair directly.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")
	password := cmd.String("password")
	remember := cmd.Bool("remember")

	r.logger.Infof("registering account for %v", email)

	if err := r.api.Register(ctx, email, password, remember); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	r.writePlain("✓ Account created\n")
	if r.session.Get().AccessToken() != "" {
		r.writePlain("✓ Signed in\n")
	} else {
		r.writePlain("Sign in with 'elib auth login' to continue\n")
	}

	return nil
}

// AuthLogout destroys the local session across both tiers.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	r.api.Logout()
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus shows the current session state without touching the network.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	sess := r.session.Get()

	if sess.AccessToken() == "" {
		r.writePlain("✗ Not signed in\n")
		return nil
	}

	if r.session.Expired() {
		r.writePlain("✗ Session expired, sign in again\n")
		return nil
	}

	r.writePlain("✓ Signed in\n")
	if sess.Durable {
		r.writePlain("Session: saved across restarts\n")
	} else {
		r.writePlain("Session: this run only\n")
	}
	if sess.RefreshToken() == "" {
		r.writePlain("Refresh: unavailable, session ends when the token expires\n")
	}

	return nil
}
