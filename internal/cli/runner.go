package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/okian/lineup/internal/adapters/mq/worker"
	"github.com/okian/lineup/internal/adapters/roster"
	"github.com/okian/lineup/internal/domain/board"
	"github.com/okian/lineup/internal/domain/reveal"
	"github.com/okian/lineup/pkg/logger"
)

const (
	defaultSettle     = worker.DefaultSettleDelay
	defaultStartDelay = worker.DefaultStartDelay
	defaultTimeout    = 10 * time.Second
)

// Summary is the final board written after the reveal.
type Summary struct {
	Session  string     `yaml:"session"`
	TeamA    board.Team `yaml:"team_a"`
	TeamB    board.Team `yaml:"team_b"`
	Bench    []string   `yaml:"bench,omitempty"`
	Unrouted int        `yaml:"unrouted"`
}

// Run executes one reveal against the backend and writes its progress and
// the final board to out. In YAML mode progress lines are YAML comments so
// out stays a valid document.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	log := logger.Get().Named("cli")

	client, err := roster.New(cfg.BackendURL, roster.WithTimeout(cfg.Timeout), roster.WithLogger(log))
	if err != nil {
		return err
	}

	// Step 1: load the roster
	tokens, err := client.AttendingPlayers(ctx, cfg.Source)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	b := board.New(board.WithLabels(cfg.TeamA, cfg.TeamB))
	b.LoadRoster(tokens)

	p := &printer{out: out, board: b}
	if cfg.Output == OutputYAML {
		p.prefix = "# "
	}
	p.linef("%d players attending", len(tokens))

	// Step 2: fetch the assignment
	b.BeginGeneration()
	assignment, err := client.GenerateTeams(ctx, cfg.Source)
	if err != nil {
		return fmt.Errorf("generate teams: %w", err)
	}
	if err := assignment.Validate(); err != nil {
		return err
	}

	// Step 3: reveal
	var opts []reveal.Option
	if cfg.Seed != 0 {
		opts = append(opts, reveal.WithSeed(cfg.Seed))
	}
	id := uuid.NewString()
	b.ResetTeams(id, cfg.TeamA, cfg.TeamB)
	sess, err := reveal.NewSession(id, assignment, b.Tokens(), opts...)
	if err != nil {
		return err
	}
	log.Debug(ctx, "reveal starting",
		logger.String("session", id),
		logger.Int("tokens", len(tokens)),
		logger.Int("assigned", assignment.Size()),
	)

	runner := worker.NewRunner(
		worker.WithStartDelay(cfg.StartDelay),
		worker.WithSettleDelay(cfg.Settle),
		worker.WithRunnerLogger(log),
	)
	if err := runner.Run(ctx, sess, p); err != nil {
		return fmt.Errorf("reveal: %w", err)
	}

	// Step 4: final board
	snap := sess.Snapshot()
	view := b.View()
	summary := Summary{
		Session:  id,
		TeamA:    view.TeamA,
		TeamB:    view.TeamB,
		Bench:    view.Bench,
		Unrouted: snap.Unrouted,
	}
	if cfg.Output == OutputYAML {
		return writeYAML(out, summary)
	}
	writeText(out, summary)
	return nil
}

func writeYAML(out io.Writer, s Summary) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(&s); err != nil {
		return fmt.Errorf("encoding to YAML failed: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding to YAML failed on close: %w", err)
	}
	return nil
}

func writeText(out io.Writer, s Summary) {
	fmt.Fprintln(out)
	for _, t := range []board.Team{s.TeamA, s.TeamB} {
		fmt.Fprintln(out, t.Header)
		for _, c := range t.Cards {
			fmt.Fprintf(out, "  %s\n", c)
		}
	}
	if len(s.Bench) > 0 {
		fmt.Fprintln(out, "Bench")
		for _, c := range s.Bench {
			fmt.Fprintf(out, "  %s\n", c)
		}
	}
}

// printer is the terminal reveal sink.
type printer struct {
	out    io.Writer
	prefix string
	board  *board.Board
}

func (p *printer) linef(format string, args ...any) {
	fmt.Fprintf(p.out, p.prefix+format+"\n", args...)
}

func (p *printer) Drawn(_ context.Context, step reveal.Step) {
	p.board.Move(step)
	p.linef("drawing %s (%d left)", step.Token.Label, step.Remaining)
}

func (p *printer) Retired(_ context.Context, step reveal.Step) {
	p.board.Apply(step)
	view := p.board.View()
	switch step.Bucket {
	case reveal.TeamA:
		p.linef("%s <- %s | %s", view.TeamA.Label, board.CardLabel(step.Ordinal, step.Entry), view.TeamA.Header)
	case reveal.TeamB:
		p.linef("%s <- %s | %s", view.TeamB.Label, board.CardLabel(step.Ordinal, step.Entry), view.TeamB.Header)
	case reveal.Bench:
		p.linef("Bench <- %s", board.BenchLabel(step.Entry))
	case reveal.None:
		p.linef("%s is not in any team", step.Token.Label)
	}
}

func (p *printer) Completed(_ context.Context, snap reveal.Snapshot) {
	p.board.Complete()
	p.linef("%s: %d + %d players placed, %d benched", board.TriggerDone, snap.TeamA.Count, snap.TeamB.Count, snap.Benched)
}
