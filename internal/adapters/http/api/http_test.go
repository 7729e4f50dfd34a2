package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/lineup/internal/adapters/http/api"
	"github.com/okian/lineup/internal/adapters/roster"
	service "github.com/okian/lineup/internal/app"
	"github.com/okian/lineup/internal/domain/board"
	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/internal/domain/types"
	"github.com/okian/lineup/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDependencies struct {
	connectErr  error
	generateErr error
	prefsErr    error
	recordsErr  error
	withdrawErr error

	connected []model.Source
	withdrawn []string
	generated []types.GenerateRequest
	saved     []types.Preferences
	tokens    []model.PlayerToken
}

func (m *mockDependencies) GetStats() types.Stats {
	return types.Stats{SessionsStarted: 3, Running: true}
}

func (m *mockDependencies) Connect(_ context.Context, src model.Source) (types.ConnectResponse, error) {
	m.connected = append(m.connected, src)
	if m.connectErr != nil {
		return types.ConnectResponse{}, m.connectErr
	}
	if err := src.Validate(); err != nil {
		return types.ConnectResponse{}, err
	}
	m.tokens = model.TokensFromNames([]string{"Amy", "Bob"})
	return types.ConnectResponse{Count: len(m.tokens), Tokens: m.tokens}, nil
}

func (m *mockDependencies) Generate(_ context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	m.generated = append(m.generated, req)
	if m.generateErr != nil {
		return types.GenerateResponse{}, m.generateErr
	}
	return types.GenerateResponse{SessionID: "s-1", Status: "running", Tokens: 2}, nil
}

func (m *mockDependencies) View() types.SessionResponse {
	v := board.New().View()
	v.Tokens = m.tokens
	return types.SessionResponse{Board: v}
}

func (m *mockDependencies) Withdraw(_ context.Context, id string) error {
	if m.withdrawErr != nil {
		return m.withdrawErr
	}
	m.withdrawn = append(m.withdrawn, id)
	return nil
}

func (m *mockDependencies) Players(_ context.Context) ([]model.Record, error) {
	return []model.Record{{"name": "Amy"}}, m.recordsErr
}

func (m *mockDependencies) Matches(_ context.Context) ([]model.Record, error) {
	return nil, m.recordsErr
}

func (m *mockDependencies) Preferences(_ context.Context) (types.Preferences, error) {
	if m.prefsErr != nil {
		return types.Preferences{}, m.prefsErr
	}
	return types.Preferences{SheetURL: "https://sheet/1", Team1Name: "Team 1", Team2Name: "Team 2"}, nil
}

func (m *mockDependencies) SavePreferences(_ context.Context, p types.Preferences) error {
	if m.prefsErr != nil {
		return m.prefsErr
	}
	m.saved = append(m.saved, p)
	return nil
}

func serve(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var resp struct {
		Code string `json:"code"`
	}
	So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
	return resp.Code
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockDependencies{}
		stream := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
		mux := http.NewServeMux()
		api.NewServer(deps, api.WithStream(stream)).Register(context.Background(), mux)

		Convey("Health serves Prometheus metrics", func() {
			w := serve(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "lineup_reveal_")
		})

		Convey("Health answers JSON clients with a liveness document", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
			req.Header.Set("Accept", "application/json")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("Stats are returned as JSON", func() {
			w := serve(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var stats types.Stats
			So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
			So(stats.SessionsStarted, ShouldEqual, 3)
			So(stats.Running, ShouldBeTrue)
		})

		Convey("The stream is mounted at /ws", func() {
			So(serve(mux, http.MethodGet, "/ws", "").Code, ShouldEqual, http.StatusTeapot)
		})

		Convey("Unknown paths are not found", func() {
			So(serve(mux, http.MethodGet, "/unknown", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestConnectHandler(t *testing.T) {
	Convey("Given the connect route", t, func() {
		deps := &mockDependencies{}
		mux := http.NewServeMux()
		api.NewServer(deps).Register(context.Background(), mux)

		Convey("A locator body loads the roster and sets the cookie", func() {
			w := serve(mux, http.MethodPost, "/connect", `{"url":"https://sheet/1"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.connected, ShouldResemble, []model.Source{{URL: "https://sheet/1"}})
			So(w.Header().Get("Set-Cookie"), ShouldContainSubstring, "sheetUrl=")
			So(w.Header().Get("Set-Cookie"), ShouldContainSubstring, "Max-Age=2592000")

			Convey("And /roster lists the tokens", func() {
				w := serve(mux, http.MethodGet, "/roster", "")
				var resp types.ConnectResponse
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Count, ShouldEqual, 2)
			})
		})

		Convey("A query parameter works without a body", func() {
			w := serve(mux, http.MethodPost, "/connect?match_id=4", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.connected, ShouldResemble, []model.Source{{MatchID: "4"}})
			So(w.Header().Get("Set-Cookie"), ShouldBeEmpty)
		})

		Convey("A malformed body is a bad request", func() {
			w := serve(mux, http.MethodPost, "/connect", `{"url":`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "bad_request")
		})

		Convey("A missing source is a bad request", func() {
			w := serve(mux, http.MethodPost, "/connect", `{}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("A backend failure is a bad gateway", func() {
			deps.connectErr = &roster.LoadFailure{Op: "roster.attending_players", Status: 404, Reason: "sheet not found"}
			w := serve(mux, http.MethodPost, "/connect", `{"url":"https://sheet/x"}`)
			So(w.Code, ShouldEqual, http.StatusBadGateway)
			So(errorCode(w), ShouldEqual, "load_failure")
			So(w.Body.String(), ShouldContainSubstring, "sheet not found")
		})

		Convey("GET is not allowed", func() {
			So(serve(mux, http.MethodGet, "/connect", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestRosterHandler(t *testing.T) {
	Convey("Given the roster route", t, func() {
		deps := &mockDependencies{}
		mux := http.NewServeMux()
		api.NewServer(deps).Register(context.Background(), mux)

		Convey("DELETE withdraws the named token", func() {
			w := serve(mux, http.MethodDelete, "/roster?name=%20Bob%20", "")
			So(w.Code, ShouldEqual, http.StatusNoContent)
			So(deps.withdrawn, ShouldResemble, []string{"Bob"})
		})

		Convey("DELETE without a name is a bad request", func() {
			w := serve(mux, http.MethodDelete, "/roster", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "bad_request")
			So(deps.withdrawn, ShouldBeEmpty)
		})

		Convey("DELETE of a token not on screen is not found", func() {
			deps.withdrawErr = service.ErrUnknownToken
			w := serve(mux, http.MethodDelete, "/roster?name=Zed", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(errorCode(w), ShouldEqual, "not_found")
		})

		Convey("POST is not allowed", func() {
			So(serve(mux, http.MethodPost, "/roster", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestGenerateHandler(t *testing.T) {
	Convey("Given the generate route", t, func() {
		deps := &mockDependencies{}
		mux := http.NewServeMux()
		api.NewServer(deps).Register(context.Background(), mux)

		Convey("A request is accepted with the session id", func() {
			w := serve(mux, http.MethodPost, "/generate", `{"team_a_label":"Reds"}`)
			So(w.Code, ShouldEqual, http.StatusAccepted)
			var resp types.GenerateResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.SessionID, ShouldEqual, "s-1")
			So(deps.generated[0].TeamALabel, ShouldEqual, "Reds")
		})

		Convey("The locator cookie fills an empty source", func() {
			req := httptest.NewRequest(http.MethodPost, "/generate", http.NoBody)
			req.AddCookie(&http.Cookie{Name: "sheetUrl", Value: "https://sheet/c"})
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusAccepted)
			So(deps.generated[0].URL, ShouldEqual, "https://sheet/c")
		})

		Convey("A running reveal is a conflict", func() {
			deps.generateErr = service.ErrRevealInProgress
			w := serve(mux, http.MethodPost, "/generate", "")
			So(w.Code, ShouldEqual, http.StatusConflict)
			So(errorCode(w), ShouldEqual, "reveal_in_progress")
		})

		Convey("A duplicate assignment is unprocessable", func() {
			deps.generateErr = errors.Join(model.ErrDuplicateIdentifier, errors.New("Amy"))
			w := serve(mux, http.MethodPost, "/generate", "")
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(errorCode(w), ShouldEqual, "duplicate_identifier")
		})

		Convey("Unknown fields are rejected", func() {
			w := serve(mux, http.MethodPost, "/generate", `{"colour":"red"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("The session route returns the board", func() {
			w := serve(mux, http.MethodGet, "/session", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"label":"Generate Teams"`)
		})
	})
}

func TestRecordAndPreferenceHandlers(t *testing.T) {
	Convey("Given the passthrough and preference routes", t, func() {
		deps := &mockDependencies{}
		mux := http.NewServeMux()
		api.NewServer(deps).Register(context.Background(), mux)

		Convey("Players are passed through", func() {
			w := serve(mux, http.MethodGet, "/players", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"name":"Amy"`)
		})

		Convey("An empty match list is an empty array", func() {
			w := serve(mux, http.MethodGet, "/matches", "")
			So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
		})

		Convey("Backend failures surface as bad gateway", func() {
			deps.recordsErr = &roster.LoadFailure{Op: "roster.players", Status: 500}
			So(serve(mux, http.MethodGet, "/players", "").Code, ShouldEqual, http.StatusBadGateway)
		})

		Convey("Preferences can be read", func() {
			w := serve(mux, http.MethodGet, "/preferences", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"sheet_url":"https://sheet/1"`)
		})

		Convey("Preferences can be written", func() {
			w := serve(mux, http.MethodPut, "/preferences", `{"team1_name":"Reds","team2_name":"Blues"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.saved, ShouldResemble, []types.Preferences{{Team1Name: "Reds", Team2Name: "Blues"}})
		})

		Convey("A failing store is unavailable", func() {
			deps.prefsErr = errors.New("redis down")
			So(serve(mux, http.MethodGet, "/preferences", "").Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("DELETE is not allowed", func() {
			So(serve(mux, http.MethodDelete, "/preferences", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestFailedRequestLogging(t *testing.T) {
	Convey("Given a server with a logger", t, func() {
		var buf bytes.Buffer
		So(logger.InitWithWriter(&buf), ShouldBeNil)

		deps := &mockDependencies{prefsErr: errors.New("redis down")}
		mux := http.NewServeMux()
		api.NewServer(deps, api.WithLogger(logger.Named("api"))).Register(context.Background(), mux)

		Convey("A 5xx answer is logged with its endpoint", func() {
			So(serve(mux, http.MethodGet, "/preferences", "").Code, ShouldEqual, http.StatusServiceUnavailable)
			So(buf.String(), ShouldContainSubstring, "request failed")
			So(buf.String(), ShouldContainSubstring, "endpoint=preferences")
		})

		Convey("A 4xx answer is not logged", func() {
			So(serve(mux, http.MethodPost, "/connect", `{}`).Code, ShouldEqual, http.StatusBadRequest)
			So(buf.String(), ShouldNotContainSubstring, "request failed")
		})
	})
}
