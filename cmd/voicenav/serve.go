package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"voicenav/internal/application"
	"voicenav/internal/infra/audio"
)

var serveListen bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the assistant against the configured utterance source",
	Long: `serve loads the start page, starts the configured utterance source (http,
dir or microphone) and dispatches every utterance heard while listening is on.
With the http source, POST /listen and DELETE /listen switch listening.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVarP(&serveListen, "listen", "l", false, "start listening immediately")
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := newSource(a.cfg.Source, a.logger)
	assistant := application.NewAssistant(
		source,
		newSpeechToText(a.cfg.OpenAI, a.registry, a.logger),
		a.dispatcher,
		a.session,
		a.logger,
	)

	if h, ok := source.(*audio.HTTPSource); ok {
		h.Attach(assistant, a.session)
	}
	if serveListen || a.cfg.Source.Listen {
		assistant.Start()
	}

	a.logger.Info("starting voicenav",
		"source", source.Name(),
		"page", a.session.Context().Path,
		"commands", a.registry.Len(),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return assistant.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")
		return nil
	})

	err = g.Wait()
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, application.ErrSourceClosed) {
		return nil
	}
	return err
}
