package experiment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/nameprop/internal/domain/annotation"
	"github.com/okian/nameprop/internal/domain/evaluation"
	"github.com/okian/nameprop/internal/domain/experiment"
	"github.com/okian/nameprop/internal/domain/model"
	"github.com/okian/nameprop/internal/domain/propagation"
	"github.com/okian/nameprop/internal/domain/timeline"
	. "github.com/smartystreets/goconvey/convey"
)

var errBroken = errors.New("broken loader")

type timelines map[string]timeline.Timeline

func (m timelines) Timeline(_ context.Context, video string) (timeline.Timeline, error) {
	tl, ok := m[video]
	if !ok {
		return timeline.Timeline{}, errBroken
	}
	return tl, nil
}

type annotations map[string]annotation.Annotation

func (m annotations) Annotation(_ context.Context, video, _ string, _ bool) (annotation.Annotation, error) {
	a, ok := m[video]
	if !ok {
		return annotation.Annotation{}, errBroken
	}
	return a, nil
}

func track(start, end float64, l annotation.Label) annotation.Track {
	return annotation.Track{Segment: timeline.MustSegment(start, end), Label: l}
}

func frames(start, end, step float64) timeline.Timeline {
	var segs []timeline.Segment
	for s := start; s < end; s += step {
		segs = append(segs, timeline.MustSegment(s, s+step))
	}
	return timeline.New(segs...)
}

func find(scores []experiment.Score, condition, pipeline string) (evaluation.Components, bool) {
	for _, s := range scores {
		if s.Condition == condition && s.Pipeline == pipeline {
			return s.Components, true
		}
	}
	return evaluation.Components{}, false
}

func session() model.Session {
	alice, host := annotation.Known("alice"), annotation.Known("host")
	return model.Session{
		Video:          "v1",
		Annotated:      frames(0, 30, 5),
		Standard:       timeline.New(timeline.MustSegment(0, 12)),
		Reference:      annotation.MustNew(track(0, 20, alice), track(20, 30, host)),
		Diarization:    annotation.MustNew(track(0, 20, annotation.Known("spk1")), track(20, 30, annotation.Known("spk2"))),
		Identification: annotation.MustNew(track(0, 30, alice)),
		Overlaid:       annotation.MustNew(track(2, 6, alice)),
	}
}

func TestSourcesLoad(t *testing.T) {
	Convey("Given loaders for one video", t, func() {
		sess := session()
		sources := experiment.Sources{
			Annotated:   timelines{"v1": sess.Annotated},
			Reference:   annotations{"v1": sess.Reference},
			Diarization: annotations{"v1": sess.Diarization},
			Overlaid:    annotations{"v1": sess.Overlaid},
		}

		Convey("When loading the video", func() {
			got, err := sources.Load(context.Background(), "v1")

			Convey("Then the session is assembled", func() {
				So(err, ShouldBeNil)
				So(got.Video, ShouldEqual, "v1")
				So(got.Reference.Tracks(), ShouldResemble, sess.Reference.Tracks())
				So(got.Standard.Empty(), ShouldBeTrue)
				So(got.Identification.Empty(), ShouldBeTrue)
			})
		})

		Convey("When a loader fails", func() {
			_, err := sources.Load(context.Background(), "v2")

			Convey("Then the error is wrapped", func() {
				So(errors.Is(err, errBroken), ShouldBeTrue)
			})
		})

		Convey("When a required loader is missing", func() {
			sources.Overlaid = nil
			_, err := sources.Load(context.Background(), "v1")

			Convey("Then it fails with ErrMissingSource", func() {
				So(errors.Is(err, experiment.ErrMissingSource), ShouldBeTrue)
			})
		})
	})
}

func TestWithoutAnchors(t *testing.T) {
	Convey("Given annotated frames and an anchor speaking first", t, func() {
		host, alice := annotation.Known("host"), annotation.Known("alice")
		reference := annotation.MustNew(track(0, 15, host), track(15, 30, alice))

		got := experiment.WithoutAnchors(frames(0, 30, 10), reference, []annotation.Label{host})

		Convey("Then frames touching anchor-free time are kept whole", func() {
			So(got.Segments(), ShouldResemble, []timeline.Segment{
				timeline.MustSegment(10, 20), timeline.MustSegment(20, 30),
			})
		})

		Convey("Then an empty region stays empty", func() {
			So(experiment.WithoutAnchors(timeline.Timeline{}, reference, nil).Empty(), ShouldBeTrue)
		})
	})
}

func TestRunner(t *testing.T) {
	Convey("Given a session", t, func() {
		sess := session()
		ctx := context.Background()

		Convey("When evaluating every pipeline", func() {
			runner := experiment.NewRunner(experiment.WithAnchors("host"))
			scores, err := runner.Evaluate(ctx, sess)

			Convey("Then each pipeline is scored under both conditions", func() {
				So(err, ShouldBeNil)
				So(len(scores), ShouldEqual, 2*len(propagation.All()))
			})

			Convey("Then M1 names the cluster seen with the overlay", func() {
				all, ok := find(scores, experiment.ConditionAll, "M1")
				So(ok, ShouldBeTrue)
				So(all, ShouldResemble, evaluation.Components{Correct: 20, Confusion: 10})
			})

			Convey("Then the no_anchor condition skips the anchor", func() {
				c, ok := find(scores, experiment.ConditionNoAnchor, "M1")
				So(ok, ShouldBeTrue)
				So(c, ShouldResemble, evaluation.Components{Correct: 20})
			})

			Convey("Then SID is scored on identification", func() {
				c, _ := find(scores, experiment.ConditionAll, "SID")
				So(c, ShouldResemble, evaluation.Components{Correct: 20, Confusion: 10})
			})
		})

		Convey("When the standard condition and oracles are enabled", func() {
			runner := experiment.NewRunner(
				experiment.WithPipelines(propagation.M1),
				experiment.WithStandardCondition(true),
				experiment.WithOracles(true),
			)
			scores, err := runner.Evaluate(ctx, sess)

			Convey("Then every scope carries pipeline and oracle rows", func() {
				So(err, ShouldBeNil)
				So(len(scores), ShouldEqual, len(experiment.Conditions())*3)
				_, ok := find(scores, experiment.ConditionStandardNoAnchor, experiment.OraclePerfectM1)
				So(ok, ShouldBeTrue)
			})

			Convey("Then the perfect oracle only misses the unnamed speaker", func() {
				c, _ := find(scores, experiment.ConditionAll, experiment.OraclePerfect)
				So(c, ShouldResemble, evaluation.Components{Correct: 20, Confusion: 10})
			})
		})

		Convey("When the session has no standard region", func() {
			sess.Standard = timeline.Timeline{}
			runner := experiment.NewRunner(experiment.WithPipelines(propagation.M1), experiment.WithStandardCondition(true))
			scores, err := runner.Evaluate(ctx, sess)

			Convey("Then only the full video is scored", func() {
				So(err, ShouldBeNil)
				So(len(scores), ShouldEqual, 2)
			})
		})

		Convey("When there is nothing to evaluate", func() {
			_, err := experiment.NewRunner(experiment.WithPipelines()).Evaluate(ctx, sess)

			Convey("Then it fails with ErrNoPipeline", func() {
				So(errors.Is(err, experiment.ErrNoPipeline), ShouldBeTrue)
			})
		})

		Convey("When the context is canceled", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := experiment.NewRunner().Evaluate(canceled, sess)

			Convey("Then the cancellation is returned", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestRunnerStandardCondition(t *testing.T) {
	Convey("Given a session whose second speaker talks outside the standard region", t, func() {
		alice, bob := annotation.Known("alice"), annotation.Known("bob")
		sess := model.Session{
			Video:       "v1",
			Annotated:   frames(0, 100, 10),
			Standard:    timeline.New(timeline.MustSegment(0, 50)),
			Reference:   annotation.MustNew(track(0, 40, alice), track(60, 100, bob)),
			Diarization: annotation.MustNew(track(0, 40, annotation.Known("spk1")), track(60, 100, annotation.Known("spk2"))),
			Overlaid:    annotation.MustNew(track(0, 10, alice)),
		}
		runner := experiment.NewRunner(
			experiment.WithPipelines(propagation.M3),
			experiment.WithStandardCondition(true),
		)

		scores, err := runner.Evaluate(context.Background(), sess)
		So(err, ShouldBeNil)

		Convey("Then the full video confuses the unnamed cluster", func() {
			c, ok := find(scores, experiment.ConditionAll, "M3")
			So(ok, ShouldBeTrue)
			So(c, ShouldResemble, evaluation.Components{Correct: 40, Confusion: 40})
		})

		Convey("Then the standard condition scores against the full reference", func() {
			c, ok := find(scores, experiment.ConditionStandard, "M3")
			So(ok, ShouldBeTrue)
			So(c, ShouldResemble, evaluation.Components{Correct: 40, Miss: 40})
			rate, err := c.ErrorRate()
			So(err, ShouldBeNil)
			So(rate, ShouldEqual, 0.5)

			na, _ := find(scores, experiment.ConditionStandardNoAnchor, "M3")
			So(na, ShouldResemble, c)
		})

		Convey("Then the cropped condition drops reference speech outside the region", func() {
			c, ok := find(scores, experiment.ConditionStandardCroppedNoAnchor, "M3")
			So(ok, ShouldBeTrue)
			So(c, ShouldResemble, evaluation.Components{Correct: 40})
		})

		Convey("Then anchors are removed using the matching reference", func() {
			anchored := experiment.NewRunner(
				experiment.WithPipelines(propagation.M3),
				experiment.WithStandardCondition(true),
				experiment.WithAnchors("bob"),
			)
			scores, err := anchored.Evaluate(context.Background(), sess)
			So(err, ShouldBeNil)

			na, _ := find(scores, experiment.ConditionStandardNoAnchor, "M3")
			So(na, ShouldResemble, evaluation.Components{Correct: 40})
			cropped, _ := find(scores, experiment.ConditionStandardCroppedNoAnchor, "M3")
			So(cropped, ShouldResemble, evaluation.Components{Correct: 40})
		})
	})
}
