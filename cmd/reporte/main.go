package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/reporte/internal/config"
	"github.com/dharsanguruparan/reporte/internal/log"
	"github.com/dharsanguruparan/reporte/internal/payload"
)

var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var verrs payload.ValidationErrors
		if errors.As(err, &verrs) {
			for _, msg := range verrs {
				fmt.Fprintf(os.Stderr, "  - %s\n", msg)
			}
		} else {
			fmt.Fprintf(os.Stderr, "reporte: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reporte",
		Short: "Technical service report tooling",
		Long: `reporte derives verification codes for report links, exports empty report
templates, submits filled reports with their photo evidence, and serves the
form backend.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			return log.SetLevel(cfg.LogLevel)
		},
	}
	cmd.AddCommand(
		newCodeCmd(),
		newLinkCmd(),
		newTemplateCmd(),
		newSubmitCmd(),
		newServeCmd(),
	)
	return cmd
}

// linkFlags are the addressing parameters, given either as a full link or
// one by one. Explicit flags win over values taken from the link.
type linkFlags struct {
	link          string
	id            string
	ciudad        string
	nit           string
	nombreEmpresa string
	postURL       string
}

func (f *linkFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.link, "link", "", "Report link carrying the parameters in its query string")
	cmd.Flags().StringVar(&f.id, "id", "", "Service order id")
	cmd.Flags().StringVar(&f.ciudad, "ciudad", "", "Client city")
	cmd.Flags().StringVar(&f.nit, "nit", "", "Client tax id (NIT)")
	cmd.Flags().StringVar(&f.nombreEmpresa, "empresa", "", "Client company name")
	cmd.Flags().StringVar(&f.postURL, "posturl", "", "Submission endpoint")
}

func (f *linkFlags) params(cmd *cobra.Command) (config.Params, error) {
	q := url.Values{}
	if f.link != "" {
		u, err := url.Parse(f.link)
		if err != nil {
			return config.Params{}, fmt.Errorf("parse link: %w", err)
		}
		q = u.Query()
	}
	overrides := map[string]struct {
		flag  string
		value string
	}{
		"id":            {"id", f.id},
		"ciudad":        {"ciudad", f.ciudad},
		"nit":           {"nit", f.nit},
		"nombreEmpresa": {"empresa", f.nombreEmpresa},
		"POSTURL":       {"posturl", f.postURL},
	}
	for key, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			q.Set(key, o.value)
		}
	}
	return config.ParseParams(q), nil
}
