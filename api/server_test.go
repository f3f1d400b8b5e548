package api_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"sync"
	"testing"

	"github.com/nyejames/midi-lx/api"
	"github.com/nyejames/midi-lx/chamsys"
	"github.com/nyejames/midi-lx/organ"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeDesk struct {
	mu      sync.Mutex
	desk    netip.Addr
	table   chamsys.SlotTable
	stopped bool
}

func (d *fakeDesk) SetDeskAddress(addr netip.Addr) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.desk = addr
}

func (d *fakeDesk) UpdateMappings(t chamsys.SlotTable) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.table = t
}

func (d *fakeDesk) Snapshot() (chamsys.Snapshot, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return chamsys.Snapshot{}, false
	}
	return chamsys.Snapshot{
		Desk:     netip.AddrPortFrom(d.desk, chamsys.DefaultPort),
		Local:    netip.MustParseAddrPort("10.0.0.5:50000"),
		PrevSlot: 3,
		Seq:      chamsys.Sequence{Forward: 7},
		Mappings: d.table,
	}, true
}

func (d *fakeDesk) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
}

type fakeOrgan struct {
	mu     sync.Mutex
	states map[organ.Stop]bool
}

func (o *fakeOrgan) SetStop(stop organ.Stop, on bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.states[stop] = on
}

func (o *fakeOrgan) States() map[organ.Stop]bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	m := make(map[organ.Stop]bool, len(o.states))
	for k, v := range o.states {
		m[k] = v
	}
	return m
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestStatus(t *testing.T) {
	desk := &fakeDesk{desk: netip.MustParseAddr("10.0.0.20"), table: chamsys.SlotTable{48: chamsys.SetIntensity}}
	h := api.NewServer(desk, nil, quiet).Handler()

	w := do(t, h, http.MethodGet, "/api/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200. Got: %d %s", w.Code, w.Body)
	}
	var got struct {
		Desk     string            `json:"desk"`
		PrevSlot int               `json:"prevSlot"`
		SeqFwd   int               `json:"seqFwd"`
		Mappings map[string]string `json:"mappings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("Expected nil. Got: %v", err)
	}
	if got.Desk != "10.0.0.20:6553" || got.PrevSlot != 3 || got.SeqFwd != 7 || got.Mappings["48"] != "intensity" {
		t.Fatalf("unexpected status %+v", got)
	}
}

func TestPutDesk(t *testing.T) {
	desk := &fakeDesk{}
	h := api.NewServer(desk, nil, quiet).Handler()

	if w := do(t, h, http.MethodPut, "/api/desk", `{"ip":"10.0.0.30"}`); w.Code != http.StatusOK {
		t.Fatalf("Expected 200. Got: %d %s", w.Code, w.Body)
	}
	if desk.desk.String() != "10.0.0.30" {
		t.Fatalf("Expected 10.0.0.30. Got: %v", desk.desk)
	}

	for _, body := range []string{`{}`, `{"ip":"nope"}`, `{"ip":"::1"}`, `not json`} {
		if w := do(t, h, http.MethodPut, "/api/desk", body); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: Expected 400. Got: %d", body, w.Code)
		}
	}
}

func TestPutMappings(t *testing.T) {
	desk := &fakeDesk{}
	h := api.NewServer(desk, nil, quiet).Handler()

	w := do(t, h, http.MethodPut, "/api/mappings", `{"48":"activate","49":"release"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200. Got: %d %s", w.Code, w.Body)
	}
	if desk.table[48] != chamsys.Activate || desk.table[49] != chamsys.Deactivate {
		t.Fatalf("unexpected table %v", desk.table)
	}

	for _, body := range []string{`{"x":"activate"}`, `{"300":"activate"}`, `{"48":"explode"}`} {
		if w := do(t, h, http.MethodPut, "/api/mappings", body); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: Expected 400. Got: %d", body, w.Code)
		}
	}
}

func TestPostStop(t *testing.T) {
	desk := &fakeDesk{}
	h := api.NewServer(desk, nil, quiet).Handler()

	if w := do(t, h, http.MethodPost, "/api/stop", ""); w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202. Got: %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/api/status", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503 after stop. Got: %d", w.Code)
	}
}

func TestOrganStops(t *testing.T) {
	org := &fakeOrgan{states: map[organ.Stop]bool{}}
	h := api.NewServer(nil, org, quiet).Handler()

	if w := do(t, h, http.MethodPost, "/api/organ/stops/swell%20oboe%208/on", ""); w.Code != http.StatusOK {
		t.Fatalf("Expected 200. Got: %d %s", w.Code, w.Body)
	}
	if w := do(t, h, http.MethodPost, "/api/organ/stops/126/off", ""); w.Code != http.StatusOK {
		t.Fatalf("Expected 200. Got: %d %s", w.Code, w.Body)
	}
	if !org.states[organ.SwellOboe8] {
		t.Fatal("Expected Swell Oboe on")
	}

	w := do(t, h, http.MethodGet, "/api/organ/stops", "")
	var stops []struct {
		ID    int    `json:"id"`
		Name  string `json:"name"`
		On    bool   `json:"on"`
		Known bool   `json:"known"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &stops); err != nil {
		t.Fatalf("Expected nil. Got: %v", err)
	}
	if len(stops) != len(organ.Stops()) {
		t.Fatalf("Expected %d stops. Got: %d", len(organ.Stops()), len(stops))
	}
	for _, s := range stops {
		if s.ID == int(organ.SwellOboe8) && (!s.On || !s.Known) {
			t.Fatalf("unexpected %+v", s)
		}
		if s.ID == 126 && (s.On || !s.Known) {
			t.Fatalf("unexpected %+v", s)
		}
	}

	if w := do(t, h, http.MethodPost, "/api/organ/stops/99/on", ""); w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404. Got: %d", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/api/organ/stops/126/maybe", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400. Got: %d", w.Code)
	}
}

func TestMissingSides(t *testing.T) {
	h := api.NewServer(nil, nil, quiet).Handler()
	for _, r := range [][2]string{
		{http.MethodGet, "/api/status"},
		{http.MethodPut, "/api/desk"},
		{http.MethodGet, "/api/organ/stops"},
		{http.MethodPost, "/api/organ/stops/1/on"},
	} {
		if w := do(t, h, r[0], r[1], `{"ip":"10.0.0.1"}`); w.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s %s: Expected 503. Got: %d", r[0], r[1], w.Code)
		}
	}
}
