// Package cli implements the interactive command-line client: registration,
// login, identity issuance, and private-key export against the backend API.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/walletkeeper/internal/client/api"
	"github.com/dmitrijs2005/walletkeeper/internal/client/config"
	"github.com/dmitrijs2005/walletkeeper/internal/common"
)

type App struct {
	config *config.Config
	client *api.Client
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		client: api.NewClient(c.ServerEndpointAddr),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

const usage = `usage: cli [-a server-url] <command>

commands:
  register     create an account with a freshly generated wallet
  login        verify credentials and show the account
  identity     issue an on-chain identity for your wallet
  export-key   print the wallet's private key (asks for the password)
`

// Run dispatches the subcommand. Returns a non-nil error for a usage
// mistake or a failed call; the caller decides the exit code.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return nil
	}

	switch args[0] {
	case "register":
		return a.register(ctx)
	case "login":
		return a.login(ctx)
	case "identity":
		return a.issueIdentity(ctx)
	case "export-key":
		return a.exportKey(ctx)
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *App) register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := GetPassword(a.out, "Repeat password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(password) != string(confirm) {
		return fmt.Errorf("passwords do not match")
	}

	account, err := a.client.Register(ctx, email, username, string(password))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s\nWallet address: %s\n", account.Username, account.WalletAddress)
	return nil
}

// authenticate asks for credentials and returns a bearer token with the
// account it belongs to.
func (a *App) authenticate(ctx context.Context) (*api.LoginResult, error) {
	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return nil, err
	}
	password, err := GetPassword(a.out, "Password")
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(password)

	return a.client.Login(ctx, username, string(password))
}

func (a *App) login(ctx context.Context) error {
	res, err := a.authenticate(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\nWallet address: %s\n", res.Account.Username, res.Account.WalletAddress)
	if res.Account.IdentityAddress != nil {
		fmt.Fprintf(a.out, "Identity: %s\n", *res.Account.IdentityAddress)
	}
	return nil
}

func (a *App) issueIdentity(ctx context.Context) error {
	res, err := a.authenticate(ctx)
	if err != nil {
		return err
	}

	name, err := GetSimpleText(a.reader, "Identity name", a.out)
	if err != nil {
		return err
	}
	symbol, err := GetSimpleText(a.reader, "Symbol (uppercase letters and digits)", a.out)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Submitting transaction, this may take a while...")

	idn, err := a.client.IssueIdentity(ctx, res.Token, name, symbol)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Identity created: %s\n", idn.Address)
	return nil
}

func (a *App) exportKey(ctx context.Context) error {
	res, err := a.authenticate(ctx)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out, "Repeat password to export the key")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	key, err := a.client.ExportWalletKey(ctx, res.Token, string(password))
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)

	fmt.Fprintf(a.out, "Private key: %s\nKeep it secret, it controls the wallet.\n", key)
	return nil
}
