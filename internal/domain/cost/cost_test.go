package cost_test

import (
	"math"
	"testing"

	"github.com/okian/nameprop/internal/domain/annotation"
	"github.com/okian/nameprop/internal/domain/cost"
	"github.com/okian/nameprop/internal/domain/timeline"
	. "github.com/smartystreets/goconvey/convey"
)

func track(start, end float64, l annotation.Label) annotation.Track {
	return annotation.Track{Segment: timeline.MustSegment(start, end), Label: l}
}

func TestCooccurrence(t *testing.T) {
	Convey("Given two annotations", t, func() {
		s1, s2 := annotation.Known("s1"), annotation.Known("s2")
		alice, bob, carol := annotation.Known("alice"), annotation.Known("bob"), annotation.Known("carol")
		a := annotation.MustNew(track(0, 10, s1), track(10, 20, s2))
		b := annotation.MustNew(track(2, 8, alice), track(8, 15, bob), track(30, 40, carol))

		m := cost.Cooccurrence(a, b)

		Convey("Then rows and columns hold every label", func() {
			r, c := m.Dims()
			So(r, ShouldEqual, 2)
			So(c, ShouldEqual, 3)
			So(m.Rows(), ShouldResemble, []annotation.Label{s1, s2})
			So(m.Cols(), ShouldResemble, []annotation.Label{alice, bob, carol})
		})

		Convey("Then cells hold overlap durations", func() {
			So(m.At(s1, alice), ShouldEqual, 6)
			So(m.At(s1, bob), ShouldEqual, 2)
			So(m.At(s2, bob), ShouldEqual, 5)
		})

		Convey("Then pairs without overlap are present with 0", func() {
			So(m.At(s2, alice), ShouldEqual, 0)
			So(m.At(s1, carol), ShouldEqual, 0)
			So(m.Row(1), ShouldResemble, []float64{0, 5, 0})
		})

		Convey("Then the transpose swaps the roles", func() {
			tr := m.Transpose()
			So(tr.Rows(), ShouldResemble, m.Cols())
			So(tr.At(bob, s2), ShouldEqual, 5)
		})

		Convey("Then overlap duration does not depend on the build order", func() {
			rev := cost.Cooccurrence(b, a)
			for _, x := range a.Labels() {
				for _, y := range b.Labels() {
					So(rev.At(y, x), ShouldEqual, m.At(x, y))
				}
			}
		})
	})

	Convey("Given overlapping tracks with the same label", t, func() {
		s1, alice := annotation.Known("s1"), annotation.Known("alice")
		a := annotation.MustNew(track(0, 10, s1), track(5, 15, s1))
		b := annotation.MustNew(track(0, 20, alice))

		Convey("Then every overlapping pair contributes", func() {
			So(cost.Cooccurrence(a, b).At(s1, alice), ShouldEqual, 20)
		})
	})

	Convey("Given an empty annotation", t, func() {
		alice := annotation.Known("alice")
		b := annotation.MustNew(track(0, 1, alice))

		m := cost.Cooccurrence(annotation.Annotation{}, b)

		Convey("Then the matrix is empty", func() {
			So(m.Empty(), ShouldBeTrue)
			r, c := m.Dims()
			So(r, ShouldEqual, 0)
			So(c, ShouldEqual, 1)
			So(m.At(alice, alice), ShouldEqual, 0)
			So(m.Transpose().Empty(), ShouldBeTrue)
		})
	})
}

func TestCoTFIDF(t *testing.T) {
	Convey("Given a broad and a narrow column label", t, func() {
		s1, s2, s3, s4 := annotation.Known("s1"), annotation.Known("s2"), annotation.Known("s3"), annotation.Known("s4")
		narrow, broad, absent := annotation.Known("narrow"), annotation.Known("broad"), annotation.Known("absent")
		a := annotation.MustNew(
			track(0, 10, s1), track(10, 20, s2), track(20, 30, s3), track(30, 40, s4),
		)
		b := annotation.MustNew(track(2, 8, narrow), track(8, 25, broad), track(50, 60, absent))

		m := cost.CoTFIDF(a, b)

		Convey("Then the narrow label is weighted by log(rows/(1+df))", func() {
			So(m.At(s1, narrow), ShouldAlmostEqual, 6*math.Log(4.0/2.0), 1e-9)
		})

		Convey("Then the broad label is weighted down to 0", func() {
			So(m.At(s2, broad), ShouldEqual, 0)
			So(m.At(s3, broad), ShouldEqual, 0)
		})

		Convey("Then no cell is negative", func() {
			for i := range a.Labels() {
				for _, v := range m.Row(i) {
					So(v, ShouldBeGreaterThanOrEqualTo, 0)
				}
			}
		})

		Convey("Then the label that never co-occurs stays 0", func() {
			So(m.At(s1, absent), ShouldEqual, 0)
		})
	})
}

func TestCoTFIDFFewClusters(t *testing.T) {
	Convey("Given at most two clusters", t, func() {
		c1, c2 := annotation.Known("c1"), annotation.Known("c2")
		alice := annotation.Known("alice")
		on := annotation.MustNew(track(0, 5, alice))

		Convey("When a name co-occurs with one of two clusters", func() {
			m := cost.CoTFIDF(annotation.MustNew(track(0, 10, c1), track(10, 20, c2)), on)

			Convey("Then log(2/2) zeroes the column", func() {
				So(cost.Cooccurrence(annotation.MustNew(track(0, 10, c1), track(10, 20, c2)), on).At(c1, alice), ShouldEqual, 5)
				So(m.At(c1, alice), ShouldEqual, 0)
				So(m.At(c2, alice), ShouldEqual, 0)
			})
		})

		Convey("When there is a single cluster", func() {
			m := cost.CoTFIDF(annotation.MustNew(track(0, 10, c1)), on)

			Convey("Then the negative weight is clamped to 0", func() {
				So(m.At(c1, alice), ShouldEqual, 0)
			})
		})
	})
}
