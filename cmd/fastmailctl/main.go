// fastmailctl is a command-line client for Fastmail's JMAP API and
// CardDAV contacts. Every command prints one JSON result envelope to
// stdout and exits non-zero on failure.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fastmailctl/fastmailctl/internal/attachment"
	"github.com/fastmailctl/fastmailctl/internal/carddav"
	"github.com/fastmailctl/fastmailctl/internal/config"
	"github.com/fastmailctl/fastmailctl/internal/contacts"
	"github.com/fastmailctl/fastmailctl/internal/credential"
	"github.com/fastmailctl/fastmailctl/internal/jmap"
	"github.com/fastmailctl/fastmailctl/internal/model"
)

var (
	// Set via -ldflags at build time.
	version = "dev"
)

// app carries the lazily-built collaborators every command pulls from.
type app struct {
	cfg *config.Config
	log *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logLevel := slog.LevelWarn
	if os.Getenv("FASTMAILCTL_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		fail(err)
	}
	a := &app{cfg: cfg, log: log}

	rootCmd := &cobra.Command{
		Use:           "fastmailctl",
		Short:         "CLI for Fastmail's JMAP API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(
		a.authCmd(),
		a.listCmd(),
		a.getCmd(),
		a.threadCmd(),
		a.searchCmd(),
		a.sendCmd(),
		a.replyCmd(),
		a.forwardCmd(),
		a.moveCmd(),
		a.spamCmd(),
		a.markReadCmd(),
		a.downloadCmd(),
		a.maskedCmd(),
		a.contactsCmd(),
		a.mcpCmd(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fail(err)
	}
}

// fail prints the error envelope and exits. The envelope is the only
// stdout output a failing command produces.
func fail(err error) {
	model.ErrorOutput(err).Print(os.Stdout)
	os.Exit(1)
}

// emit prints a success envelope. Commands call it exactly once.
func emit(out model.Output) error {
	return out.Print(os.Stdout)
}

// client builds an authenticated JMAP client from the stored token.
func (a *app) client(ctx context.Context) (*jmap.Client, error) {
	token, err := credential.Get(credential.KeyAPIToken)
	if err != nil {
		return nil, fmt.Errorf("no API token; run `fastmailctl auth <token>` first: %w", err)
	}
	c := jmap.NewClient(a.cfg.JMAP.SessionURL, token, a.cfg.Timeout(), a.log)
	if _, err := c.Authenticate(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// contactManager builds the CardDAV-backed contact manager, or an
// error when the CardDAV credentials were never stored.
func (a *app) contactManager() (*contacts.Manager, error) {
	username, err := credential.Get(credential.KeyUsername)
	if err != nil {
		return nil, fmt.Errorf("no CardDAV username; run `fastmailctl auth carddav` first: %w", err)
	}
	appPassword, err := credential.Get(credential.KeyAppPassword)
	if err != nil {
		return nil, fmt.Errorf("no CardDAV app password; run `fastmailctl auth carddav` first: %w", err)
	}

	dav := carddav.NewClient(a.cfg.CardDAV.BaseURL, username, appPassword, a.cfg.Timeout(), a.log)
	cache, err := contacts.NewCache(a.cfg.CardDAV.CachePath)
	if err != nil {
		return nil, err
	}
	return contacts.NewManager(dav, cache, a.cfg.CacheMaxAge()), nil
}

// resolver builds the attachment resolver over the given client.
func (a *app) resolver(client *jmap.Client) *attachment.Resolver {
	return attachment.NewResolver(client, attachment.Tools{
		PDFToText: a.cfg.Attachment.PDFToText,
		Antiword:  a.cfg.Attachment.Antiword,
		Tesseract: a.cfg.Attachment.Tesseract,
	}, a.cfg.Attachment.ImageScaleRatio)
}
