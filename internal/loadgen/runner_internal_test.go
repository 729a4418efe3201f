package loadgen

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func statsServer(body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func TestWaitEvaluated(t *testing.T) {
	Convey("Given a service that failed one of four sessions", t, func() {
		srv := statsServer(`{"evaluated":3,"failed":1}`)
		defer srv.Close()
		client := NewClient(srv.URL, time.Second)
		cfg := &Config{WaitTimeout: 5 * time.Second}

		Convey("When waiting for the four sessions", func() {
			start := time.Now()
			p, err := waitEvaluated(context.Background(), cfg, client, 4)

			Convey("Then the failure counts as done and the wait ends at once", func() {
				So(err, ShouldBeNil)
				So(p, ShouldResemble, Progress{Evaluated: 3, Failed: 1})
				So(time.Since(start), ShouldBeLessThan, time.Second)
			})
		})

		Convey("When waiting for more sessions than the service has seen", func() {
			cfg.WaitTimeout = 50 * time.Millisecond
			p, err := waitEvaluated(context.Background(), cfg, client, 5)

			Convey("Then it times out with the last progress", func() {
				So(errors.Is(err, ErrWaitTimeout), ShouldBeTrue)
				So(p.Done(), ShouldEqual, 4)
			})
		})
	})
}
