package service

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mobilien/mobi-agent/app/core"
)

type Options struct {
	ConfigPath string
}

func (o *Options) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&o.ConfigPath, "config", "c", "", "init api by given config")
}

func NewCommand() *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:   "service",
		Short: "chat relay service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(opts)
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

func Run(opts *Options) error {
	app := core.MustSetupCore(core.MustLoadBaseConfig(opts.ConfigPath))
	defer app.Close()

	srv := serve(app)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	<-sigs

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && err != http.ErrServerClosed {
		slog.Error("http server shutdown", slog.String("error", err.Error()))
	}
	return nil
}
