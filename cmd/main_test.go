package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/lineup/internal/adapters/roster"
	"github.com/okian/lineup/internal/config"
	"github.com/okian/lineup/internal/domain/types"
	"github.com/okian/lineup/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainConfiguration(t *testing.T) {
	convey.Convey("Given LINEUP_ environment variables", t, func() {
		t.Setenv("LINEUP_ADDR", ":8080")
		t.Setenv("LINEUP_QUEUE_SIZE", "64")
		t.Setenv("LINEUP_SETTLE_DELAY_MS", "10")

		convey.Convey("Then configuration should be loadable", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.EventQueueSize, convey.ShouldEqual, 64)
			convey.So(cfg.SettleDelay(), convey.ShouldEqual, 10*time.Millisecond)
		})
	})

	convey.Convey("Given an empty listen address", t, func() {
		t.Setenv("LINEUP_ADDR", " ")

		convey.Convey("Then configuration loading should fail", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func TestBuild(t *testing.T) {
	convey.Convey("Given a wired application against a fake backend", t, func() {
		convey.So(logger.InitWithWriter(io.Discard), convey.ShouldBeNil)

		backend := http.NewServeMux()
		backend.HandleFunc(roster.PathAttendingPlayers, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[{"name":"Amy"},{"name":"Bo"},{"name":"Cy"}]`))
		})
		upstream := httptest.NewServer(backend)
		defer upstream.Close()

		cfg := config.New()
		cfg.BackendURL = upstream.URL

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		a, err := build(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)
		convey.So(a.start(ctx), convey.ShouldBeNil)
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			a.stop(sctx)
		}()

		srv := httptest.NewServer(a.handler)
		defer srv.Close()

		get := func(path, accept string) *http.Response {
			req, err := http.NewRequest(http.MethodGet, srv.URL+path, http.NoBody)
			convey.So(err, convey.ShouldBeNil)
			if accept != "" {
				req.Header.Set("Accept", accept)
			}
			resp, err := http.DefaultClient.Do(req)
			convey.So(err, convey.ShouldBeNil)
			return resp
		}

		convey.Convey("Then the liveness document is served", func() {
			resp := get("/healthz", "application/json")
			defer resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then the idle board is served", func() {
			resp := get("/session", "")
			defer resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			var body types.SessionResponse
			convey.So(json.NewDecoder(resp.Body).Decode(&body), convey.ShouldBeNil)
			convey.So(body.Board.Trigger.Label, convey.ShouldEqual, "Generate Teams")
			convey.So(body.Board.TeamA.Label, convey.ShouldEqual, "Team 1")
		})

		convey.Convey("Then the docs and the console page are served", func() {
			docs := get("/api-docs", "")
			defer docs.Body.Close()
			convey.So(docs.StatusCode, convey.ShouldEqual, http.StatusOK)

			page := get("/", "")
			defer page.Body.Close()
			convey.So(page.StatusCode, convey.ShouldEqual, http.StatusOK)
			raw, _ := io.ReadAll(page.Body)
			convey.So(strings.ToLower(string(raw)), convey.ShouldContainSubstring, "<html")
		})

		convey.Convey("Then connecting loads the roster from the backend", func() {
			resp, err := http.Post(srv.URL+"/connect?url=https%3A%2F%2Fsheet%2Fx", "application/json", http.NoBody)
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			var body types.ConnectResponse
			convey.So(json.NewDecoder(resp.Body).Decode(&body), convey.ShouldBeNil)
			convey.So(body.Count, convey.ShouldEqual, 3)
		})

		convey.Convey("Then CORS preflight is answered", func() {
			req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/generate", http.NoBody)
			req.Header.Set("Origin", "http://console.local")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			resp, err := http.DefaultClient.Do(req)
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			convey.So(resp.Header.Get("Access-Control-Allow-Origin"), convey.ShouldNotBeEmpty)
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When the system metrics updater runs until its context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})

		convey.Convey("When system metrics are updated", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}
