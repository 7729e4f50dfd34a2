package reveal_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/internal/domain/reveal"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleAssignment() *model.Assignment {
	return &model.Assignment{
		TeamA: []model.PlayerEntry{
			{Name: "A1", Position: "F", Rating: 5},
			{Name: "A2", Position: "M", Rating: 4.5},
			{Name: "A3", Position: "D", Rating: 3.2},
		},
		TeamB: []model.PlayerEntry{
			{Name: "B1", Position: "F", Rating: 4.8},
			{Name: "B2", Position: "G", Rating: 2.1},
		},
		Bench: []model.PlayerEntry{
			{Name: "C1", Position: "M", Rating: 1.5},
		},
	}
}

func TestNewSession(t *testing.T) {
	Convey("Given a nil assignment", t, func() {
		s, err := reveal.NewSession("s", nil, model.TokensFromNames([]string{"A"}))

		Convey("Then the session is rejected", func() {
			So(s, ShouldBeNil)
			So(err, ShouldEqual, reveal.ErrNoAssignment)
		})
	})

	Convey("Given an empty token set", t, func() {
		s, err := reveal.NewSession("empty", sampleAssignment(), nil, reveal.WithSeed(1))
		So(err, ShouldBeNil)
		So(s.State(), ShouldEqual, reveal.Idle)

		Convey("When the session starts", func() {
			So(s.Start(), ShouldBeNil)

			Convey("Then it completes at once with zero totals and no draws", func() {
				snap := s.Snapshot()
				So(s.State(), ShouldEqual, reveal.Complete)
				So(snap.TeamA, ShouldResemble, reveal.Accumulator{})
				So(snap.TeamB, ShouldResemble, reveal.Accumulator{})
				So(snap.Draws, ShouldEqual, 0)
				_, err := s.Draw()
				So(err, ShouldEqual, reveal.ErrNotRunning)
			})
		})
	})
}

func TestSessionLifecycle(t *testing.T) {
	Convey("Given the two-player assignment", t, func() {
		a := &model.Assignment{
			TeamA: []model.PlayerEntry{{Name: "A", Rating: 5.0, Position: "F"}},
			TeamB: []model.PlayerEntry{{Name: "B", Rating: 3.5, Position: "D"}},
			Bench: []model.PlayerEntry{},
		}
		s, err := reveal.NewSession("ab", a, model.TokensFromNames([]string{"A", "B"}), reveal.WithSeed(7))
		So(err, ShouldBeNil)

		Convey("Drawing before start is rejected", func() {
			_, err := s.Draw()
			So(err, ShouldEqual, reveal.ErrNotRunning)
		})

		Convey("When started", func() {
			So(s.Start(), ShouldBeNil)
			So(s.State(), ShouldEqual, reveal.Running)

			Convey("Starting twice is rejected", func() {
				So(s.Start(), ShouldEqual, reveal.ErrAlreadyStarted)
			})

			Convey("A second draw before retirement is rejected", func() {
				_, err := s.Draw()
				So(err, ShouldBeNil)
				_, err = s.Draw()
				So(err, ShouldEqual, reveal.ErrDrawPending)
			})

			Convey("Retiring without a draw is rejected", func() {
				_, err := s.Retire()
				So(err, ShouldEqual, reveal.ErrNoPendingDraw)
			})

			Convey("The last draw stays Running until it is retired", func() {
				_, _ = s.Draw()
				_, _ = s.Retire()
				step, err := s.Draw()
				So(err, ShouldBeNil)
				So(step.Remaining, ShouldEqual, 0)
				So(s.State(), ShouldEqual, reveal.Running)
				_, err = s.Retire()
				So(err, ShouldBeNil)
				So(s.State(), ShouldEqual, reveal.Complete)
			})

			Convey("When drained", func() {
				steps, err := reveal.Run(s)
				So(err, ShouldBeNil)

				Convey("Then totals, remaining set and state match", func() {
					snap := s.Snapshot()
					So(steps, ShouldHaveLength, 2)
					So(snap.TeamA.Total, ShouldEqual, 5.0)
					So(snap.TeamB.Total, ShouldEqual, 3.5)
					So(snap.Remaining, ShouldBeEmpty)
					So(s.State(), ShouldEqual, reveal.Complete)
				})
			})
		})
	})
}

func TestDrainProperties(t *testing.T) {
	Convey("Given the sample assignment and an unrouted token", t, func() {
		names := []string{"A1", "A2", "A3", "B1", "B2", "C1", "stranger"}

		for seed := int64(0); seed < 20; seed++ {
			s, err := reveal.NewSession(fmt.Sprintf("s-%d", seed), sampleAssignment(),
				model.TokensFromNames(names), reveal.WithSeed(seed))
			So(err, ShouldBeNil)
			steps, err := reveal.Run(s)
			So(err, ShouldBeNil)
			snap := s.Snapshot()

			// every token is accounted for exactly once
			So(snap.TeamA.Count+snap.TeamB.Count+snap.Benched+snap.Unrouted, ShouldEqual, len(names))
			So(snap.Unrouted, ShouldEqual, 1)
			So(snap.Draws, ShouldEqual, len(names))

			// totals do not depend on draw order
			So(snap.TeamA.Total, ShouldAlmostEqual, 12.7, 1e-9)
			So(snap.TeamB.Total, ShouldAlmostEqual, 6.9, 1e-9)

			// numbering is 1..n per team, and sequence numbers are contiguous
			var nextA, nextB, benchFirst int
			seen := map[string]bool{}
			for i, st := range steps {
				So(st.Seq, ShouldEqual, i+1)
				So(seen[st.Token.ID], ShouldBeFalse)
				seen[st.Token.ID] = true
				switch st.Bucket {
				case reveal.TeamA:
					nextA++
					So(st.Ordinal, ShouldEqual, nextA)
				case reveal.TeamB:
					nextB++
					So(st.Ordinal, ShouldEqual, nextB)
				case reveal.Bench:
					if st.FirstBench {
						benchFirst++
					}
					So(st.Ordinal, ShouldEqual, 0)
				case reveal.None:
					So(st.Token.ID, ShouldEqual, "stranger")
					So(st.Routed(), ShouldBeFalse)
				}
			}
			So(benchFirst, ShouldEqual, 1)
		}
	})

	Convey("Given two sessions with different seeds", t, func() {
		names := []string{"A1", "A2", "A3", "B1", "B2", "C1"}
		order := func(seed int64) []string {
			s, _ := reveal.NewSession("x", sampleAssignment(), model.TokensFromNames(names), reveal.WithSeed(seed))
			steps, _ := reveal.Run(s)
			ids := make([]string, len(steps))
			for i, st := range steps {
				ids[i] = st.Token.ID
			}
			return ids
		}

		Convey("Then the same seed reproduces the same order", func() {
			So(order(3), ShouldResemble, order(3))
			So(order(3), ShouldHaveLength, len(names))
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given an identifier listed in several buckets", t, func() {
		a := &model.Assignment{
			TeamA: []model.PlayerEntry{{Name: "X", Rating: 1}},
			TeamB: []model.PlayerEntry{{Name: "X", Rating: 2}, {Name: "Y", Rating: 3}},
			Bench: []model.PlayerEntry{{Name: "Y", Rating: 4}, {Name: "Z", Rating: 5}},
		}
		s, err := reveal.NewSession("c", a, nil)
		So(err, ShouldBeNil)

		Convey("Then team A wins over team B, and team B over bench", func() {
			b, e := s.Classify("X")
			So(b, ShouldEqual, reveal.TeamA)
			So(e.Rating, ShouldEqual, 1)
			b, e = s.Classify("Y")
			So(b, ShouldEqual, reveal.TeamB)
			So(e.Rating, ShouldEqual, 3)
			b, _ = s.Classify("Z")
			So(b, ShouldEqual, reveal.Bench)
			b, _ = s.Classify("nobody")
			So(b, ShouldEqual, reveal.None)
		})
	})
}

func TestWithdraw(t *testing.T) {
	Convey("Given a running session", t, func() {
		s, _ := reveal.NewSession("w", sampleAssignment(),
			model.TokensFromNames([]string{"A1", "B1", "C1"}), reveal.WithSeed(11))
		So(s.Start(), ShouldBeNil)

		Convey("When a token is withdrawn before it is drawn", func() {
			So(s.Withdraw("B1"), ShouldBeTrue)
			So(s.Withdraw("B1"), ShouldBeFalse)
			steps, err := reveal.Run(s)
			So(err, ShouldBeNil)

			Convey("Then it is never drawn", func() {
				So(steps, ShouldHaveLength, 2)
				for _, st := range steps {
					So(st.Token.ID, ShouldNotEqual, "B1")
				}
				snap := s.Snapshot()
				So(snap.Withdrawn, ShouldEqual, 1)
				So(snap.TeamB.Count, ShouldEqual, 0)
			})
		})

		Convey("When every token is withdrawn", func() {
			s.Withdraw("A1")
			s.Withdraw("B1")
			s.Withdraw("C1")

			Convey("Then the session completes", func() {
				So(s.State(), ShouldEqual, reveal.Complete)
				So(s.Withdraw("A1"), ShouldBeFalse)
			})
		})
	})
}

func TestNames(t *testing.T) {
	Convey("States and buckets have stable names", t, func() {
		So(reveal.Idle.String(), ShouldEqual, "idle")
		So(reveal.Running.String(), ShouldEqual, "running")
		So(reveal.Complete.String(), ShouldEqual, "complete")
		So(reveal.TeamA.String(), ShouldEqual, "team_a")
		So(reveal.Bench.String(), ShouldEqual, "bench")
		So(reveal.None.String(), ShouldEqual, "none")
		So(reveal.TeamB.IsTeam(), ShouldBeTrue)
		So(reveal.Bench.IsTeam(), ShouldBeFalse)
	})
}

func TestStepJSON(t *testing.T) {
	Convey("Given a routed step", t, func() {
		step := reveal.Step{Seq: 1, Token: model.PlayerToken{ID: "A", Label: "A"}, Bucket: reveal.TeamB, Ordinal: 1}

		Convey("Then the bucket is encoded by name", func() {
			raw, err := json.Marshal(step)
			So(err, ShouldBeNil)
			So(string(raw), ShouldContainSubstring, `"bucket":"team_b"`)

			var back reveal.Step
			So(json.Unmarshal(raw, &back), ShouldBeNil)
			So(back.Bucket, ShouldEqual, reveal.TeamB)
		})
	})
}
