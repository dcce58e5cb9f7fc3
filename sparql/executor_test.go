package sparql

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semdash/errors"
)

const temporalQuery = `PREFIX smw: <http://example.org/onto#>
SELECT ?crm_cd_desc ?crime_year (COUNT(?dr_no) AS ?crimeCount) WHERE { ?dr_no smw:occuredOn ?crime_year . }`

func newTestExecutor(t *testing.T, handler http.HandlerFunc, opts ...func(*Config)) (*Executor, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := Config{Endpoint: server.URL + "/repositories/Vedanya", Timeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}
	exec, err := NewExecutor(cfg)
	require.NoError(t, err)
	return exec, server
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Endpoint: "http://localhost:7200/repositories/Vedanya"}, false},
		{"valid https with headers", Config{Endpoint: "https://store.example.org/sparql", Headers: map[string]string{"X-Tenant": "a"}}, false},
		{"missing endpoint", Config{}, true},
		{"relative endpoint", Config{Endpoint: "/repositories/Vedanya"}, true},
		{"bad scheme", Config{Endpoint: "ftp://example.org/sparql"}, true},
		{"negative timeout", Config{Endpoint: "http://h/s", Timeout: -time.Second}, true},
		{"negative size", Config{Endpoint: "http://h/s", MaxResponseBytes: -1}, true},
		{"fixed header override", Config{Endpoint: "http://h/s", Headers: map[string]string{"accept": "text/csv"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalid(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestExecutor_WireProtocol(t *testing.T) {
	var calls atomic.Int32
	exec, _ := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/repositories/Vedanya", r.URL.Path)
		assert.Equal(t, "application/sparql-query", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "dashboard", r.Header.Get("X-Client"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, temporalQuery, string(body))

		w.Header().Set("Content-Type", "application/sparql-results+json")
		_, _ = io.WriteString(w, `{"head":{"vars":["crm_cd_desc","crime_year","crimeCount"]},"results":{"bindings":[
			{"crm_cd_desc":{"type":"uri","value":"http://example.org/onto#THEFT"},"crime_year":{"type":"literal","value":"2021"},"crimeCount":{"type":"literal","value":"120"}},
			{"crm_cd_desc":{"type":"uri","value":"http://example.org/onto#THEFT"},"crime_year":{"type":"literal","value":"2020"},"crimeCount":{"type":"literal","value":"80"}}
		]}}`)
	}, func(c *Config) {
		c.Headers = map[string]string{"X-Client": "dashboard"}
	})

	rs, err := exec.Execute(context.Background(), temporalQuery)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "exactly one request per invocation")

	rows := NormalizeAll(rs, nil)
	require.Len(t, rows, 2)
	assert.Equal(t, DisplayRow{"crm_cd_desc": "THEFT", "crime_year": "2021", "crimeCount": "120"}, rows[0])
	assert.Equal(t, "80", rows[1]["crimeCount"], "store order preserved")
}

func TestExecutor_HTTPError(t *testing.T) {
	var calls atomic.Int32
	exec, _ := newTestExecutor(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "MALFORMED QUERY: unexpected token", http.StatusBadRequest)
	})

	rs, err := exec.Execute(context.Background(), "SELEKT")
	require.Error(t, err)
	assert.Nil(t, rs, "no partial ResultSet on failure")
	assert.True(t, errors.IsHTTP(err))
	assert.Equal(t, http.StatusBadRequest, errors.StatusCode(err))
	assert.Contains(t, err.Error(), "MALFORMED QUERY")
	assert.Equal(t, int32(1), calls.Load(), "no retry")
}

func TestExecutor_RecoveryAfterFailure(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	exec, _ := newTestExecutor(t, func(w http.ResponseWriter, _ *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"head":{"vars":["a"]},"results":{"bindings":[{"a":{"type":"literal","value":"1"}}]}}`)
	})

	_, err := exec.Execute(context.Background(), "SELECT * {}")
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, errors.StatusCode(err))

	fail.Store(false)
	rs, err := exec.Execute(context.Background(), "SELECT * {}")
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())
}

func TestExecutor_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"html body", "<html><body>proxy error</body></html>"},
		{"missing bindings", `{"head":{"vars":[]},"results":{}}`},
		{"proxy page after results", `{"head":{"vars":[]},"results":{"bindings":[]}}<html>502</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec, _ := newTestExecutor(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			})

			rs, err := exec.Execute(context.Background(), "SELECT * {}")
			require.Error(t, err)
			assert.Nil(t, rs)
			assert.True(t, errors.IsParse(err))
		})
	}
}

func TestExecutor_ResponseTooLarge(t *testing.T) {
	exec, _ := newTestExecutor(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"head":{"vars":["a"]},"results":{"bindings":[`+strings.Repeat(" ", 256)+`]}}`)
	}, func(c *Config) {
		c.MaxResponseBytes = 64
	})

	_, err := exec.Execute(context.Background(), "SELECT * {}")
	require.Error(t, err)
	assert.True(t, errors.IsParse(err))
	assert.ErrorIs(t, err, errors.ErrResponseTooBig)
}

func TestExecutor_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL + "/sparql"
	server.Close()

	exec, err := NewExecutor(Config{Endpoint: endpoint, Timeout: time.Second})
	require.NoError(t, err)

	rs, err := exec.Execute(context.Background(), "SELECT * {}")
	require.Error(t, err)
	assert.Nil(t, rs)
	assert.True(t, errors.IsNetwork(err))
	assert.Equal(t, 0, errors.StatusCode(err))
}

func TestExecutor_TLSConfig(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"head":{"vars":["x"]},"results":{"bindings":[{"x":{"type":"literal","value":"1"}}]}}`))
	}))
	defer server.Close()

	cfg := Config{Endpoint: server.URL + "/sparql", Timeout: 5 * time.Second}

	// The test server certificate is not in the system pool
	untrusted, err := NewExecutor(cfg)
	require.NoError(t, err)
	_, err = untrusted.Execute(context.Background(), "SELECT * {}")
	require.Error(t, err)
	assert.True(t, errors.IsNetwork(err))

	trusted := server.Client().Transport.(*http.Transport).TLSClientConfig
	exec, err := NewExecutor(cfg, WithTLSConfig(trusted))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, exec.httpClient.Timeout)

	rs, err := exec.Execute(context.Background(), "SELECT * {}")
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())
}

func TestExecutor_TLSConfigLeavesCallerClient(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"head":{"vars":["x"]},"results":{"bindings":[]}}`))
	}))
	defer server.Close()

	ownTransport := &http.Transport{MaxIdleConnsPerHost: 7}
	custom := &http.Client{Timeout: 3 * time.Second, Transport: ownTransport}
	trusted := server.Client().Transport.(*http.Transport).TLSClientConfig

	exec, err := NewExecutor(Config{Endpoint: server.URL}, WithHTTPClient(custom), WithTLSConfig(trusted))
	require.NoError(t, err)

	assert.Same(t, ownTransport, custom.Transport, "caller's client must not be modified")
	assert.Nil(t, ownTransport.TLSClientConfig)
	assert.NotSame(t, custom, exec.httpClient)
	assert.Equal(t, 3*time.Second, exec.httpClient.Timeout)

	transport, ok := exec.httpClient.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 7, transport.MaxIdleConnsPerHost, "transport settings carried over")
	assert.Same(t, trusted, transport.TLSClientConfig)

	rs, err := exec.Execute(context.Background(), "SELECT * {}")
	require.NoError(t, err)
	assert.Equal(t, 0, rs.Len())
}

func TestExecutor_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	exec, _ := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := exec.Execute(ctx, "SELECT * {}")
	require.Error(t, err)
	assert.True(t, errors.IsNetwork(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewExecutor_InvalidConfig(t *testing.T) {
	_, err := NewExecutor(Config{})
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}
