package cli

import (
	"context"
	"os"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and authenticates against the locally
// replicated accounts collection, so a known device keeps working with the
// backend unreachable. A successful login resolves the tenant, which unlocks
// merge and propagation; the merge is re-run right away to pick up whatever
// the tenant accumulated while this device was logged out.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	account, err := a.session.Login(username, password, a.service.Accounts().Get())
	if err != nil {
		printlnFn("Login failed:", err.Error())
		return err
	}

	printlnFn("Logged in as", account.Username)
	return a.Sync(ctx)
}

// TokenLogin authenticates with a backend-provisioned device token. This is
// the bootstrap path for a fresh install: the token carries the tenant id,
// so the first merge can run before any account has replicated.
func (a *App) TokenLogin(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Paste device token", os.Stdout)
	if err != nil {
		return err
	}

	account, err := a.session.LoginWithToken(token)
	if err != nil {
		printlnFn("Token rejected:", err.Error())
		return err
	}

	printlnFn("Logged in as", account.Username)
	return a.Sync(ctx)
}

// Logout drops the session. Replicated data stays on the device.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout()
	printlnFn("Logged out.")
	return nil
}
