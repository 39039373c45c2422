package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/metalblueberry/bard-tuner/internal/cli"
	"github.com/metalblueberry/bard-tuner/pkg/tuner"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

func main() {
	flags := cli.Register(flag.CommandLine)
	flag.Parse()

	engine, _, err := flags.NewEngine()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	states, unsubscribe := engine.Subscribe()
	err = engine.Start(ctx)

	if err != nil {
		log.Fatalf("start tuner: %v", err)
	}

	live := term.IsTerminal(int(os.Stdout.Fd()))
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {

		select {
		case <-ctx.Done():
		case <-engine.Done():
		}

		err := engine.Stop()
		unsubscribe()
		return err
	})

	g.Go(func() error {
		render(os.Stdout, states, live)
		return nil
	})

	err = g.Wait()

	if err != nil {
		log.Fatalf("stop tuner: %v", err)
	}

}

/*
 * Writes every published state. On a terminal the line is redrawn in place,
 * otherwise each state gets its own line.
 */
func render(out io.Writer, states <-chan tuner.State, live bool) {

	for s := range states {

		if live {
			fmt.Fprintf(out, "\r%s\x1b[K", cli.Line(s))
		} else {
			fmt.Fprintln(out, cli.Line(s))
		}

	}

	if live {
		fmt.Fprintln(out)
	}

}
