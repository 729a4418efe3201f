package annotation_test

import (
	"errors"
	"testing"

	"github.com/okian/nameprop/internal/domain/annotation"
	"github.com/okian/nameprop/internal/domain/timeline"
	. "github.com/smartystreets/goconvey/convey"
)

func track(start, end float64, l annotation.Label) annotation.Track {
	return annotation.Track{Segment: timeline.MustSegment(start, end), Label: l}
}

// partition groups segments by label, ignoring the label identities.
func partition(a annotation.Annotation) map[annotation.Label][]timeline.Segment {
	out := make(map[annotation.Label][]timeline.Segment)
	for _, t := range a.Tracks() {
		out[t.Label] = append(out[t.Label], t.Segment)
	}
	return out
}

func TestLabel(t *testing.T) {
	Convey("Given labels", t, func() {
		alice := annotation.Known("alice")

		Convey("Then known labels compare by name", func() {
			So(alice, ShouldEqual, annotation.Known("alice"))
			So(alice, ShouldNotEqual, annotation.Known("bob"))
			So(alice.IsUnknown(), ShouldBeFalse)
		})

		Convey("Then unknown labels are unique", func() {
			u1, u2 := annotation.NewUnknown(), annotation.NewUnknown()
			So(u1, ShouldNotEqual, u2)
			So(u1, ShouldEqual, u1)
			So(u1.IsUnknown(), ShouldBeTrue)
			So(u1.Name(), ShouldBeEmpty)
		})

		Convey("Then known labels sort before unknown ones", func() {
			u := annotation.NewUnknown()
			So(alice.Less(u), ShouldBeTrue)
			So(u.Less(alice), ShouldBeFalse)
			So(annotation.Known("a").Less(annotation.Known("b")), ShouldBeTrue)
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given tracks", t, func() {
		alice := annotation.Known("alice")

		Convey("When a track has no label", func() {
			_, err := annotation.New(annotation.Track{Segment: timeline.MustSegment(0, 1)})

			Convey("Then it fails with ErrMissingLabel", func() {
				So(errors.Is(err, annotation.ErrMissingLabel), ShouldBeTrue)
			})
		})

		Convey("When tracks are duplicated and unordered", func() {
			a := annotation.MustNew(track(5, 6, alice), track(0, 1, alice), track(5, 6, alice))

			Convey("Then they are sorted and compacted", func() {
				So(a.Len(), ShouldEqual, 2)
				So(a.Tracks()[0], ShouldResemble, track(0, 1, alice))
			})
		})
	})
}

func TestLabelsAndSubset(t *testing.T) {
	Convey("Given a multi-track annotation", t, func() {
		alice, bob, carol := annotation.Known("alice"), annotation.Known("bob"), annotation.Known("carol")
		a := annotation.MustNew(
			track(0, 10, bob),
			track(0, 10, alice),
			track(12, 20, carol),
			track(25, 30, alice),
		)

		Convey("Then labels are distinct and ordered", func() {
			So(a.Labels(), ShouldResemble, []annotation.Label{alice, bob, carol})
		})

		Convey("Then the timeline holds each segment once", func() {
			So(a.Timeline().Len(), ShouldEqual, 3)
		})

		Convey("Then a subset keeps the selected labels only", func() {
			s := a.Subset(alice)
			So(s.Labels(), ShouldResemble, []annotation.Label{alice})
			So(s.Timeline().Duration(), ShouldEqual, 15)
		})

		Convey("Then collapsing keeps one label per segment", func() {
			c := a.Collapse()
			So(c.Len(), ShouldEqual, 3)
			So(c.Tracks()[0].Label, ShouldEqual, alice)
		})

		Convey("Then overlapping tracks can be looked up", func() {
			So(len(a.Overlapping(timeline.MustSegment(9, 13))), ShouldEqual, 3)
			So(a.Overlapping(timeline.MustSegment(20, 25)), ShouldBeEmpty)
		})
	})
}

func TestAnonymizeAndRelabel(t *testing.T) {
	Convey("Given an annotation with repeated labels", t, func() {
		alice, bob := annotation.Known("alice"), annotation.Known("bob")
		a := annotation.MustNew(
			track(0, 5, alice),
			track(5, 8, bob),
			track(8, 12, alice),
		)

		Convey("When anonymizing", func() {
			anon := a.Anonymize()

			Convey("Then every label is a fresh unknown", func() {
				for _, l := range anon.Labels() {
					So(l.IsUnknown(), ShouldBeTrue)
				}
				So(len(anon.Labels()), ShouldEqual, 2)
			})

			Convey("Then the interval structure is preserved", func() {
				So(anon.Timeline().Segments(), ShouldResemble, a.Timeline().Segments())
			})

			Convey("Then relabeling back recovers the original partition", func() {
				back := make(map[annotation.Label]annotation.Label)
				for i, tr := range anon.Tracks() {
					back[tr.Label] = annotation.Known("speaker" + string(rune('A'+i)))
				}
				restored := anon.Relabel(back)
				groups := partition(restored)
				So(len(groups), ShouldEqual, 2)
				original := partition(a)
				for _, segs := range groups {
					matched := false
					for _, want := range original {
						if len(want) == len(segs) && want[0] == segs[0] {
							So(segs, ShouldResemble, want)
							matched = true
						}
					}
					So(matched, ShouldBeTrue)
				}
			})

			Convey("Then a second call yields different placeholders", func() {
				again := a.Anonymize()
				So(again.Labels()[0], ShouldNotEqual, anon.Labels()[0])
			})
		})

		Convey("When relabeling with a partial mapping", func() {
			carol := annotation.Known("carol")
			r := a.Relabel(map[annotation.Label]annotation.Label{alice: carol})

			Convey("Then absent labels pass through", func() {
				So(r.Labels(), ShouldResemble, []annotation.Label{bob, carol})
			})

			Convey("Then the input is left untouched", func() {
				So(a.Labels(), ShouldResemble, []annotation.Label{alice, bob})
			})
		})
	})
}

func TestAnnotationCrop(t *testing.T) {
	Convey("Given an annotation and a reference timeline", t, func() {
		alice, bob := annotation.Known("alice"), annotation.Known("bob")
		a := annotation.MustNew(track(0, 4, alice), track(5, 7, bob), track(9, 14, alice))
		ref := timeline.New(timeline.MustSegment(3, 12))

		Convey("Then loose cropping keeps whole tracks with their labels", func() {
			So(a.Crop(ref, timeline.Loose).Tracks(), ShouldResemble, a.Tracks())
		})

		Convey("Then strict cropping keeps contained tracks", func() {
			So(a.Crop(ref, timeline.Strict).Tracks(), ShouldResemble, []annotation.Track{track(5, 7, bob)})
		})

		Convey("Then intersection cropping clips tracks", func() {
			So(a.Crop(ref, timeline.Intersection).Tracks(), ShouldResemble, []annotation.Track{
				track(3, 4, alice), track(5, 7, bob), track(9, 12, alice),
			})
		})
	})
}
