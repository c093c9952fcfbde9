package control

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brutella/hap/accessory"
	"github.com/cybre/mrsteam-homekit/internal/errors"
	"github.com/cybre/mrsteam-homekit/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSwitch struct {
	name string
	on   bool
	err  error
}

func (f *fakeSwitch) Name() string { return f.name }
func (f *fakeSwitch) State() bool  { return f.on }
func (f *fakeSwitch) Toggle(_ context.Context, on bool) error {
	f.on = on
	return f.err
}

type fakePlatform struct {
	switches []*fakeSwitch
}

func (p *fakePlatform) Name() string                { return "Fake" }
func (p *fakePlatform) Accessories() []*accessory.A { return nil }

func (p *fakePlatform) Switches() []platform.Switch {
	out := make([]platform.Switch, 0, len(p.switches))
	for _, s := range p.switches {
		out = append(out, s)
	}
	return out
}

func (p *fakePlatform) Switch(name string) (platform.Switch, bool) {
	for _, s := range p.switches {
		if s.name == name {
			return s, true
		}
	}
	return nil, false
}

func newTestServer(switches ...*fakeSwitch) http.Handler {
	return New("", &fakePlatform{switches: switches}).Router()
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHome(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodGet, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK"}`, rec.Body.String())
}

func TestListAccessories(t *testing.T) {
	h := newTestServer(&fakeSwitch{name: "Sauna", on: true}, &fakeSwitch{name: "Shower"})

	rec := do(t, h, http.MethodGet, "/accessories")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"name":"Sauna","on":true},{"name":"Shower","on":false}]`, rec.Body.String())
}

func TestGetAccessory(t *testing.T) {
	h := newTestServer(&fakeSwitch{name: "Sauna", on: true})

	rec := do(t, h, http.MethodGet, "/accessories/Sauna")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"Sauna","on":true}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/accessories/Pool")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetAccessory(t *testing.T) {
	sauna := &fakeSwitch{name: "Sauna"}
	h := newTestServer(sauna)

	rec := do(t, h, http.MethodPost, "/accessories/Sauna/on")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, sauna.on)

	rec = do(t, h, http.MethodPost, "/accessories/Sauna/off")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, sauna.on)

	rec = do(t, h, http.MethodPost, "/accessories/Sauna/toggle")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/accessories/Pool/on")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetAccessory_TriggerFailure(t *testing.T) {
	sauna := &fakeSwitch{name: "Sauna", err: errors.New("trigger steam: unexpected status 500")}
	h := newTestServer(sauna)

	rec := do(t, h, http.MethodPost, "/accessories/Sauna/on")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "unexpected status 500")
	assert.True(t, sauna.on)
}

func TestMetrics(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodGet, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
