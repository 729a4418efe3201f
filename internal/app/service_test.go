package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/nameprop/internal/adapters/mq/queue"
	"github.com/okian/nameprop/internal/adapters/repository"
	service "github.com/okian/nameprop/internal/app"
	"github.com/okian/nameprop/internal/domain/annotation"
	"github.com/okian/nameprop/internal/domain/experiment"
	"github.com/okian/nameprop/internal/domain/model"
	"github.com/okian/nameprop/internal/domain/propagation"
	"github.com/okian/nameprop/internal/domain/timeline"
	"github.com/okian/nameprop/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func track(start, end float64, l annotation.Label) annotation.Track {
	return annotation.Track{Segment: timeline.MustSegment(start, end), Label: l}
}

// session has alice talking for 10s with her name shown; bob follows
// unnamed for 10s.
func session(video string) model.Session {
	alice, bob := annotation.Known("alice"), annotation.Known("bob")
	return model.Session{
		Video:       video,
		Annotated:   timeline.New(timeline.MustSegment(0, 20)),
		Reference:   annotation.MustNew(track(0, 10, alice), track(10, 20, bob)),
		Diarization: annotation.MustNew(track(0, 10, annotation.Known("c1")), track(10, 20, annotation.Known("c2"))),
		Overlaid:    annotation.MustNew(track(1, 3, alice)),
	}
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		svc := service.New(service.WithWorkerCount(2), service.WithQueueSize(8))

		Convey("Then submissions are refused before start", func() {
			_, err := svc.Submit(ctx, session("v1"))
			So(errors.Is(err, queue.ErrClosed), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("When it is started twice and stopped twice", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldEqual, true)
			So(svc.Stop(ctx), ShouldBeNil)
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then it is stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_EndToEnd(t *testing.T) {
	Convey("Given a started service evaluating M1 and SID", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithPipelines(propagation.M1, propagation.SID),
			service.WithAnchors("alice"),
		)
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When two sessions are submitted and the service drains", func() {
			for i := 0; i < 2; i++ {
				video := fmt.Sprintf("v%d", i)
				So(svc.SeenAndRecord(ctx, video), ShouldBeFalse)
				job, err := svc.Submit(ctx, session(video))
				So(err, ShouldBeNil)
				So(job.ID, ShouldNotBeEmpty)
			}
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then M1 names alice and leaves bob unnamed", func() {
				r, err := svc.Result(ctx, experiment.ConditionAll, "M1")
				So(err, ShouldBeNil)
				So(r.Sessions, ShouldEqual, 2)
				So(r.Components.Correct, ShouldEqual, 20)
				So(r.Components.Confusion, ShouldEqual, 20)
				So(*r.ErrorRate, ShouldEqual, 0.5)
			})

			Convey("Then the no_anchor condition ignores alice's turns", func() {
				r, err := svc.Result(ctx, experiment.ConditionNoAnchor, "M1")
				So(err, ShouldBeNil)
				So(r.Components.Correct, ShouldEqual, 0)
				So(r.Components.Confusion, ShouldEqual, 20)
			})

			Convey("Then an empty identification misses everything", func() {
				r, err := svc.Result(ctx, experiment.ConditionAll, "SID")
				So(err, ShouldBeNil)
				So(r.Components.Miss, ShouldEqual, 40)
				So(*r.ErrorRate, ShouldEqual, 1)
			})

			Convey("Then a ranked listing puts M1 first", func() {
				rows, err := svc.Results(ctx, experiment.ConditionAll, 10)
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 2)
				So(rows[0].Pipeline, ShouldEqual, "M1")
				So(rows[0].Rank, ShouldEqual, 1)
			})

			Convey("Then the full listing covers both conditions", func() {
				rows, err := svc.Results(ctx, "", 10)
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 4)
			})

			Convey("Then the stats count the sessions and nothing stays pending", func() {
				stats := svc.GetStats()
				So(stats["pending"], ShouldEqual, 0)
				So(stats["evaluated"], ShouldEqual, 2)
				So(stats["failed"], ShouldEqual, 0)
				So(svc.Size(), ShouldEqual, 2)
			})

			Convey("Then a resubmitted video is seen", func() {
				So(svc.SeenAndRecord(ctx, "v0"), ShouldBeTrue)
			})
		})

		Convey("When a session is invalid", func() {
			_, err := svc.Submit(ctx, model.Session{})
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, repository.ErrInvalidSession), ShouldBeTrue)
			})
		})

		Reset(func() { _ = svc.Stop(ctx) })
	})
}

func TestService_EvictedVideo(t *testing.T) {
	Convey("Given a service whose deduper remembers a single video", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		svc := service.New(
			service.WithWorkerCount(1),
			service.WithDedupeSize(1),
			service.WithPipelines(propagation.M1),
		)
		So(svc.Start(ctx), ShouldBeNil)

		for _, video := range []string{"v1", "v2"} {
			So(svc.SeenAndRecord(ctx, video), ShouldBeFalse)
			_, err := svc.Submit(ctx, session(video))
			So(err, ShouldBeNil)
		}
		So(svc.Stop(ctx), ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When the evicted video is submitted again", func() {
			seen := svc.SeenAndRecord(ctx, "v1")

			Convey("Then it is still seen", func() {
				So(seen, ShouldBeTrue)
			})
		})

		Convey("When the evicted video bypasses the deduper", func() {
			_, err := svc.Submit(ctx, session("v1"))
			So(err, ShouldBeNil)
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then it is not accumulated twice", func() {
				r, err := svc.Result(ctx, experiment.ConditionAll, "M1")
				So(err, ShouldBeNil)
				So(r.Sessions, ShouldEqual, 2)
				So(r.Components.Correct, ShouldEqual, 20)

				stats := svc.GetStats()
				So(stats["evaluated"], ShouldEqual, 2)
				So(stats["failed"], ShouldEqual, 1)
			})

			Convey("Then no session is kept after evaluation", func() {
				So(svc.GetStats()["pending"], ShouldEqual, 0)
			})
		})

		Reset(func() { _ = svc.Stop(ctx) })
	})
}
