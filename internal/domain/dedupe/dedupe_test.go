package dedupe_test

import (
	"strings"
	"sync"
	"testing"

	dedupe "github.com/okian/lineup/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSet(t *testing.T) {
	Convey("Given a new identifier set", t, func() {
		s := dedupe.New(dedupe.WithCapacity(8))
		So(s.Size(), ShouldEqual, 0)

		Convey("When an identifier is recorded for the first time", func() {
			seen := s.SeenAndRecord("Alice")

			Convey("Then it is reported as new", func() {
				So(seen, ShouldBeFalse)
				So(s.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the same identifier is recorded twice", func() {
			s.SeenAndRecord("Alice")
			seen := s.SeenAndRecord("Alice")

			Convey("Then the second call reports it as seen", func() {
				So(seen, ShouldBeTrue)
				So(s.Size(), ShouldEqual, 1)
			})
		})

		Convey("When an identifier is unrecorded", func() {
			s.SeenAndRecord("Alice")
			s.Unrecord("Alice")

			Convey("Then it can be recorded again", func() {
				So(s.Size(), ShouldEqual, 0)
				So(s.SeenAndRecord("Alice"), ShouldBeFalse)
			})
		})

		Convey("When unrecording an unknown identifier", func() {
			s.Unrecord("ghost")

			Convey("Then nothing changes", func() {
				So(s.Size(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a set with a case-folding normalizer", t, func() {
		s := dedupe.New(dedupe.WithNormalizer(strings.ToLower))

		Convey("Then identifiers differing only in case collide", func() {
			So(s.SeenAndRecord("Bob"), ShouldBeFalse)
			So(s.SeenAndRecord("BOB"), ShouldBeTrue)
		})
	})
}

func TestHelpers(t *testing.T) {
	Convey("Given a list with repeats", t, func() {
		ids := []string{"A", "B", "A", "C", "B", "A"}

		Convey("Duplicates returns each repeat in order", func() {
			So(dedupe.Duplicates(ids), ShouldResemble, []string{"A", "B", "A"})
		})

		Convey("Unique keeps first occurrences in order", func() {
			So(dedupe.Unique(ids), ShouldResemble, []string{"A", "B", "C"})
		})

		Convey("A list without repeats has no duplicates", func() {
			So(dedupe.Duplicates([]string{"A", "B"}), ShouldBeEmpty)
		})
	})
}

func TestSetConcurrency(t *testing.T) {
	Convey("Given many goroutines racing on the same identifier", t, func() {
		s := dedupe.New()
		var wg sync.WaitGroup
		var mu sync.Mutex
		fresh := 0

		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !s.SeenAndRecord("same") {
					mu.Lock()
					fresh++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one of them records it", func() {
			So(fresh, ShouldEqual, 1)
			So(s.Size(), ShouldEqual, 1)
		})
	})
}
