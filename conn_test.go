package qiskitruntime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConn dials a generic channel connection against an httptest server.
func testConn(t *testing.T, handler http.Handler, options ...DialOption) *Conn {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	params := ClientParameters{Channel: ChannelGeneric, Token: "test-token", URL: srv.URL}
	opts := append([]DialOption{
		WithHTTPClient(srv.Client()),
		WithPollInterval(time.Millisecond),
	}, options...)
	conn, err := Dial(params, opts...)
	require.NoError(t, err)
	return conn
}

func TestDialValidatesParameters(t *testing.T) {
	_, err := Dial(ClientParameters{Channel: "watson", Token: "t"})
	require.Error(t, err)

	_, err = Dial(ClientParameters{Channel: ChannelGeneric, URL: "http://localhost"})
	require.Error(t, err)

	_, err = Dial(ClientParameters{Channel: ChannelIBMCloud, Token: "t"})
	require.Error(t, err)
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	conn := testConn(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{}`))
	}), WithClientApplication("my-app"))

	require.NoError(t, conn.get(context.Background(), "backends", nil, nil))

	assert.Equal(t, "apikey test-token", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, DefaultClientAppl+":my-app", got.Get("X-Qx-Client-Application"))
	assert.NotEmpty(t, got.Get("X-Request-Id"))
}

func TestQuantumChannelLogin(t *testing.T) {
	var logins int
	var accessToken string
	mux := http.NewServeMux()
	mux.HandleFunc("/users/loginWithToken", func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "api-token", req.Token)
		logins++
		json.NewEncoder(w).Encode(loginResp{ID: "access-1", UserID: "u1", TTL: 1209600})
	})
	mux.HandleFunc("/jobs", func(w http.ResponseWriter, r *http.Request) {
		accessToken = r.Header.Get("X-Access-Token")
		w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	conn, err := Dial(
		ClientParameters{Channel: ChannelIBMQuantum, Token: "api-token", URL: srv.URL},
		WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	require.Equal(t, 1, logins)

	require.NoError(t, conn.get(context.Background(), "jobs", nil, nil))
	assert.Equal(t, "access-1", accessToken)
}

func TestQuantumChannelRefreshesOn401(t *testing.T) {
	var logins int
	mux := http.NewServeMux()
	mux.HandleFunc("/users/loginWithToken", func(w http.ResponseWriter, r *http.Request) {
		logins++
		json.NewEncoder(w).Encode(loginResp{ID: "access-" + string(rune('0'+logins))})
	})
	mux.HandleFunc("/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Access-Token") == "access-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	conn, err := Dial(
		ClientParameters{Channel: ChannelIBMQuantum, Token: "api-token", URL: srv.URL},
		WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	require.NoError(t, conn.get(context.Background(), "jobs", nil, nil))
	assert.Equal(t, 2, logins)
}

func TestRetriesTransientFailures(t *testing.T) {
	var calls int
	conn := testConn(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"devices":["ibm_test"]}`))
	}), WithRetries(3))

	var resp backendsResp
	require.NoError(t, conn.get(context.Background(), "backends", nil, &resp))
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"ibm_test"}, resp.Devices)
}

func TestRetriesRewindRequestBody(t *testing.T) {
	var calls int
	var lastBody string
	conn := testConn(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		raw, _ := json.Marshal(map[string]string{})
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		lastBody = body["backend"]
		w.Write(raw)
	}), WithRetries(2))

	err := conn.post(context.Background(), "sessions", map[string]string{"backend": "ibm_test"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "ibm_test", lastBody)
}

func TestRequestErrorOnClientFailure(t *testing.T) {
	conn := testConn(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such job", http.StatusNotFound)
	}))

	err := conn.get(context.Background(), "jobs/unknown", nil, nil)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
	assert.Contains(t, reqErr.Body, "no such job")
	assert.NotEmpty(t, reqErr.RequestID)
}

func TestExhaustedRetriesReportStatus(t *testing.T) {
	conn := testConn(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}), WithRetries(2))

	err := conn.get(context.Background(), "backends", nil, nil)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusServiceUnavailable, reqErr.StatusCode)
}
