package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Semior001/headlines/app/gnews"
	"github.com/Semior001/headlines/app/render"
	"github.com/Semior001/headlines/app/sampler"
	"golang.org/x/exp/slog"
)

// Shuffle is a command to show random headlines in the terminal.
type Shuffle struct {
	GNews GNewsGroup `group:"gnews" namespace:"gnews" env-namespace:"GNEWS"`
	Once  bool       `long:"once" description:"show a single sample and exit"`
}

// Execute runs the command.
func (s Shuffle) Execute(_ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return s.run(ctx, os.Stdin, os.Stdout)
}

func (s Shuffle) run(ctx context.Context, in io.Reader, out io.Writer) error {
	lg := slog.Default()

	var renderErr error
	smp := s.GNews.newSampler(
		lg.With(slog.String("prefix", "sampler")),
		gnews.NewClient(lg.With(slog.String("prefix", "gnews")), s.GNews.Endpoint, s.GNews.Timeout),
		sampler.WithObserver(func(st sampler.State) {
			if err := render.WriteText(out, render.NewPage(st, time.Local)); err != nil && renderErr == nil {
				renderErr = err
			}
		}),
	)

	smp.Refresh(ctx)
	if renderErr != nil {
		return fmt.Errorf("render page: %w", renderErr)
	}

	if s.Once {
		if st := smp.State(); st.Failed() {
			return fmt.Errorf("refresh headlines: %w", st.Err)
		}
		return nil
	}

	lines := readLines(ctx, in)
	for {
		if _, err := fmt.Fprint(out, "\n[Enter] shuffle, [q] quit: "); err != nil {
			return fmt.Errorf("write prompt: %w", err)
		}

		var line inputLine
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = l
		}

		if line.err != nil {
			return fmt.Errorf("read input: %w", line.err)
		}

		if strings.EqualFold(strings.TrimSpace(line.text), "q") {
			return nil
		}

		smp.Refresh(ctx)
		if renderErr != nil {
			return fmt.Errorf("render page: %w", renderErr)
		}
	}
}

type inputLine struct {
	text string
	err  error
}

// readLines feeds lines of the input into the channel until the input ends
// or the context is done. A read failure is sent as the last line.
func readLines(ctx context.Context, in io.Reader) <-chan inputLine {
	lines := make(chan inputLine)

	send := func(l inputLine) bool {
		select {
		case lines <- l:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(lines)

		sc := bufio.NewScanner(in)
		for sc.Scan() {
			if !send(inputLine{text: sc.Text()}) {
				return
			}
		}

		if err := sc.Err(); err != nil {
			send(inputLine{err: err})
		}
	}()

	return lines
}
