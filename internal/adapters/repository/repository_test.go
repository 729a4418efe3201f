package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/nameprop/internal/adapters/repository"
	"github.com/okian/nameprop/internal/domain/annotation"
	"github.com/okian/nameprop/internal/domain/evaluation"
	"github.com/okian/nameprop/internal/domain/experiment"
	"github.com/okian/nameprop/internal/domain/model"
	"github.com/okian/nameprop/internal/domain/timeline"
	. "github.com/smartystreets/goconvey/convey"
)

func track(start, end float64, l annotation.Label) annotation.Track {
	return annotation.Track{Segment: timeline.MustSegment(start, end), Label: l}
}

func TestSessionStore(t *testing.T) {
	Convey("Given a session store", t, func() {
		ctx := context.Background()
		store := repository.NewSessionStore()
		alice, bob := annotation.Known("alice"), annotation.Known("bob")
		sess := model.Session{
			Video:       "v1",
			Annotated:   timeline.New(timeline.MustSegment(0, 10)),
			Reference:   annotation.MustNew(track(0, 10, alice), track(0, 10, bob)),
			Diarization: annotation.MustNew(track(0, 10, annotation.NewUnknown())),
			Overlaid:    annotation.MustNew(track(1, 3, alice)),
		}

		Convey("When a session without video is stored", func() {
			err := store.Put(ctx, model.Session{})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, repository.ErrInvalidSession), ShouldBeTrue)
			})
		})

		Convey("When a session is stored", func() {
			So(store.Put(ctx, sess), ShouldBeNil)

			Convey("Then it can be read back and counted", func() {
				got, err := store.Get(ctx, "v1")
				So(err, ShouldBeNil)
				So(got.Overlaid.Tracks(), ShouldResemble, sess.Overlaid.Tracks())
				So(store.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then the sources load it as a session", func() {
				So(store.Has(ctx, "v1"), ShouldBeTrue)
				loaded, err := store.Load(ctx, "v1")
				So(err, ShouldBeNil)
				So(loaded.Reference.Len(), ShouldEqual, 2)
				So(loaded.Annotated.Segments(), ShouldResemble, sess.Annotated.Segments())
			})

			Convey("Then a single-track read collapses overlapping labels", func() {
				a, err := store.Sources().Reference.Annotation(ctx, "v1", experiment.LayerSpeaker, false)
				So(err, ShouldBeNil)
				So(a.Labels(), ShouldResemble, []annotation.Label{alice})
			})

			Convey("Then asking for the wrong layer fails", func() {
				_, err := store.Sources().Overlaid.Annotation(ctx, "v1", experiment.LayerSpeaker, true)
				So(errors.Is(err, repository.ErrUnknownLayer), ShouldBeTrue)
			})

			Convey("Then deleting it makes it unknown", func() {
				store.Delete(ctx, "v1")
				So(store.Has(ctx, "v1"), ShouldBeFalse)
				_, err := store.Get(ctx, "v1")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				_, err = store.Sources().Load(ctx, "v1")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func score(condition, pipeline string, c evaluation.Components) experiment.Score {
	return experiment.Score{Condition: condition, Pipeline: pipeline, Components: c}
}

func TestResultStore(t *testing.T) {
	Convey("Given a result store", t, func() {
		ctx := context.Background()
		store := repository.NewResultStore()

		Convey("When nothing was recorded", func() {
			Convey("Then reads are empty", func() {
				list, err := store.List(ctx, "", 10)
				So(err, ShouldBeNil)
				So(list, ShouldBeEmpty)
				So(store.Count(ctx), ShouldEqual, 0)
				_, err = store.Get(ctx, "all", "M1")
				So(errors.Is(err, repository.ErrNoResult), ShouldBeTrue)
			})
		})

		Convey("When two sessions are recorded", func() {
			So(store.Record(ctx, "v1", []experiment.Score{
				score("all", "M1", evaluation.Components{Correct: 60, Confusion: 40}),
				score("all", "M2", evaluation.Components{Correct: 80, Miss: 20}),
				score("all", "SID", evaluation.Components{FalseAlarm: 5}),
				score("no_anchor", "M1", evaluation.Components{Correct: 10}),
			}), ShouldBeNil)
			So(store.Record(ctx, "v2", []experiment.Score{
				score("all", "M1", evaluation.Components{Correct: 40, Confusion: 60}),
				score("all", "M2", evaluation.Components{Correct: 20, Miss: 80}),
			}), ShouldBeNil)

			Convey("Then components are summed per condition and pipeline", func() {
				r, err := store.Get(ctx, "all", "M1")
				So(err, ShouldBeNil)
				So(r.Sessions, ShouldEqual, 2)
				So(r.Components, ShouldResemble, evaluation.Components{Correct: 100, Confusion: 100})
				So(*r.ErrorRate, ShouldEqual, 0.5)
				So(store.Count(ctx), ShouldEqual, 2)
			})

			Convey("Then listing filters by condition and honours the limit", func() {
				list, err := store.List(ctx, "all", 2)
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 2)
				So(list[0].Pipeline, ShouldEqual, "M1")
				all, _ := store.List(ctx, "", 100)
				So(len(all), ShouldEqual, 4)
			})

			Convey("Then the ranking puts undefined rates last", func() {
				ranked, err := store.Ranking(ctx, "all", 10)
				So(err, ShouldBeNil)
				So(len(ranked), ShouldEqual, 3)
				So(ranked[0].Rank, ShouldEqual, 1)
				So(ranked[2].Pipeline, ShouldEqual, "SID")
				So(ranked[2].ErrorRate, ShouldBeNil)
			})

			Convey("Then a video is never accumulated twice", func() {
				So(store.Recorded(ctx, "v1"), ShouldBeTrue)
				So(store.Recorded(ctx, "v3"), ShouldBeFalse)
				err := store.Record(ctx, "v1", []experiment.Score{
					score("all", "M1", evaluation.Components{Correct: 1000}),
				})
				So(errors.Is(err, repository.ErrDuplicateVideo), ShouldBeTrue)
				r, _ := store.Get(ctx, "all", "M1")
				So(r.Components, ShouldResemble, evaluation.Components{Correct: 100, Confusion: 100})
				So(store.Count(ctx), ShouldEqual, 2)
			})

			Convey("Then invalid limits are rejected", func() {
				_, err := store.List(ctx, "", 0)
				So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
				_, err = store.Ranking(ctx, "all", -1)
				So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
			})
		})

		Convey("When sessions are recorded concurrently", func() {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_ = store.Record(ctx, fmt.Sprintf("v%d", i), []experiment.Score{score("all", "M3", evaluation.Components{Correct: 1})})
					_, _ = store.List(ctx, "", 10)
				}(i)
			}
			wg.Wait()

			Convey("Then no session is lost", func() {
				r, err := store.Get(ctx, "all", "M3")
				So(err, ShouldBeNil)
				So(r.Components.Correct, ShouldEqual, 20)
				So(store.Count(ctx), ShouldEqual, 20)
			})
		})
	})
}
