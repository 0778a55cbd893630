package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mjelle/shotgroup/internal/adapters/http/api"
	app "github.com/mjelle/shotgroup/internal/app"
	"github.com/mjelle/shotgroup/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	if err := logger.Init(); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	svc := app.New(app.WithLogger(logger.Get()))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)

	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func getJSON(t *testing.T, url string, into any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

const analyzeBody = `{
	"shots": [{"x": 450, "y": 500}, {"x": 550, "y": 500}],
	"image_width": 1000,
	"image_height": 1000
}`

func TestPostTargetsAnalyze(t *testing.T) {
	Convey("Given the API over a fresh service", t, func() {
		srv := newTestServer(t)

		Convey("When posting a target without record", func() {
			resp, body := postJSON(t, srv.URL+"/targets", analyzeBody)

			Convey("Then it answers 200 with the analysis", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(body["shot_count"], ShouldEqual, 2)
				So(body["group_radius"].(float64), ShouldAlmostEqual, 0.1, 1e-9)
				So(body["tightness"], ShouldEqual, "tight")
				So(body["bias"], ShouldEqual, "centered")
				So(body["confidence"], ShouldEqual, "low")
				So(body, ShouldNotContainKey, "pattern_id")
			})
		})

		Convey("When posting with an invalid image size", func() {
			resp, body := postJSON(t, srv.URL+"/targets", `{
				"shots": [{"x": 1, "y": 1}, {"x": 2, "y": 2}],
				"image_width": 0,
				"image_height": 1000
			}`)

			Convey("Then it answers 400 invalid_geometry", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(body["code"], ShouldEqual, "invalid_geometry")
			})
		})

		Convey("When posting a single shot", func() {
			resp, body := postJSON(t, srv.URL+"/targets", `{
				"shots": [{"x": 500, "y": 500}],
				"image_width": 1000,
				"image_height": 1000
			}`)

			Convey("Then the suppressed report is still a 200", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(body["suppression_reason"], ShouldNotBeEmpty)
			})
		})
	})
}

func TestPostTargetsRecord(t *testing.T) {
	Convey("Given the API over a fresh service", t, func() {
		srv := newTestServer(t)

		recordBody := `{
			"shots": [{"x": 450, "y": 500}, {"x": 550, "y": 500}],
			"image_width": 1000,
			"image_height": 1000,
			"session_type": "match",
			"ts": "2026-08-20T10:00:00Z",
			"record": true
		}`

		Convey("When recording a target", func() {
			resp, body := postJSON(t, srv.URL+"/targets", recordBody)

			Convey("Then it answers 201 with a minted pattern id", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusCreated)
				So(body["pattern_id"], ShouldNotBeEmpty)
			})

			Convey("And the listing shows it", func() {
				var listing []map[string]any
				listResp := getJSON(t, srv.URL+"/targets?filter=allTime", &listing)
				So(listResp.StatusCode, ShouldEqual, http.StatusOK)
				So(listing, ShouldHaveLength, 1)
				So(listing[0]["session_name"], ShouldEqual, "match")
				So(listing[0]["id"], ShouldEqual, body["pattern_id"])
			})

			Convey("And deleting it answers 204", func() {
				id, _ := body["pattern_id"].(string)
				req, err := http.NewRequest(http.MethodDelete, srv.URL+"/targets/"+id, nil)
				So(err, ShouldBeNil)
				delResp, err := http.DefaultClient.Do(req)
				So(err, ShouldBeNil)
				defer delResp.Body.Close()
				So(delResp.StatusCode, ShouldEqual, http.StatusNoContent)
			})
		})

		Convey("When recording without a session type", func() {
			resp, body := postJSON(t, srv.URL+"/targets", `{
				"shots": [{"x": 1, "y": 1}],
				"image_width": 1000,
				"image_height": 1000,
				"record": true
			}`)

			Convey("Then it answers 400", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(body["code"], ShouldEqual, "bad_request")
			})
		})
	})
}

func TestListTargetsFilters(t *testing.T) {
	Convey("Given a service with no history", t, func() {
		srv := newTestServer(t)

		Convey("When listing with a bogus filter value", func() {
			var body map[string]any
			resp := getJSON(t, srv.URL+"/targets?filter=fortnight", &body)

			Convey("Then it answers 400", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(body["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When listing with a bogus session value", func() {
			var body map[string]any
			resp := getJSON(t, srv.URL+"/targets?session=sniping", &body)

			Convey("Then it answers 400", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(body["code"], ShouldEqual, "bad_request")
			})
		})
	})
}

func TestGetInsights(t *testing.T) {
	Convey("Given the API over a fresh service", t, func() {
		srv := newTestServer(t)

		Convey("When reading insights with no history", func() {
			var body map[string]any
			resp := getJSON(t, srv.URL+"/insights?filter=allTime", &body)

			Convey("Then the suppressed payload still answers 200", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(body["session_count"], ShouldEqual, 0)
				So(body["observation"], ShouldNotBeEmpty)
				So(body["suppression_reason"], ShouldNotBeEmpty)
			})
		})

		Convey("When sending anything but GET", func() {
			resp, err := http.Post(srv.URL+"/insights", "application/json", bytes.NewBufferString("{}"))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the route refuses it", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestThumbnailAbsent(t *testing.T) {
	Convey("Given a service with no thumbnail store", t, func() {
		srv := newTestServer(t)

		Convey("When fetching a thumbnail", func() {
			resp, err := http.Get(srv.URL + "/targets/some-id/thumbnail")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it answers 204", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNoContent)
			})
		})
	})
}

func TestHealthz(t *testing.T) {
	Convey("Given the API", t, func() {
		srv := newTestServer(t)

		Convey("When probing /healthz", func() {
			resp, err := http.Get(srv.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			raw, err := io.ReadAll(resp.Body)
			So(err, ShouldBeNil)

			Convey("Then it serves the metrics exposition", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(string(raw), ShouldContainSubstring, "shotgroup_")
			})
		})
	})
}
