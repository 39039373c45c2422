package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/metalblueberry/bard-tuner/internal/cli"
	"github.com/metalblueberry/bard-tuner/pkg/tuner"
	"golang.org/x/sync/errgroup"
)

func main() {
	flags := cli.Register(flag.CommandLine)
	duration := flag.Duration("duration", 30*time.Second, "stop after this long (0 runs until interrupted)")
	flag.Parse()

	ctx, done := signal.NotifyContext(context.Background(), os.Interrupt)
	defer done()

	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	engine, _, err := flags.NewEngine()
	chk(err)
	states, unsubscribe := engine.Subscribe()
	chk(engine.Start(ctx))
	log.Println("listening")
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
		logChanges(states, log.Default())
		return nil
	})

	chk(g.Wait())
	log.Println("done")
}

/*
 * Logs a line every time the detected note changes.
 */
func logChanges(states <-chan tuner.State, logger *log.Logger) int {
	previous := tuner.InitialState()
	changes := 0

	for s := range states {

		if s.Note == previous.Note && s.Octave == previous.Octave {
			continue
		}

		previous = s

		if s.Note == tuner.NoNote {
			continue
		}

		logger.Printf("%s%d %+d cents (%.2f Hz)", s.Note, s.Octave, s.RoundedCents(), s.Frequency)
		changes++
	}

	return changes
}

func chk(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
