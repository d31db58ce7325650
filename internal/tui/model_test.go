package tui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sweeney/rad-monitor/internal/status"
)

type fakeSource struct {
	st        status.StatusInner
	err       error
	toggles   int
	coalesced bool
}

func (f *fakeSource) Status(context.Context) (status.StatusInner, error) {
	return f.st, f.err
}

func (f *fakeSource) Toggle(context.Context) (bool, error) {
	f.toggles++
	return f.coalesced, f.err
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelQuit(t *testing.T) {
	m := New(&fakeSource{}, "http://pi")
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModelToggleKey(t *testing.T) {
	src := &fakeSource{}
	m := New(src, "http://pi")

	_, cmd := m.Update(key("t"))
	if cmd == nil {
		t.Fatal("expected toggle command")
	}
	msg := cmd()
	if src.toggles != 1 {
		t.Errorf("toggles: got %d, want 1", src.toggles)
	}

	next, _ := m.Update(msg)
	if !strings.Contains(next.View(), "connecting") {
		t.Error("view before first status should say connecting")
	}
	if next.(Model).notice != "toggle requested" {
		t.Errorf("notice: got %q", next.(Model).notice)
	}
}

func TestModelRendersStatus(t *testing.T) {
	src := &fakeSource{st: status.StatusInner{
		Mode:        "ALERT",
		Alert:       "ACTIVE",
		LastReading: 3512,
		MQTT:        status.MQTTStatus{Connected: true},
		Config:      status.ConfigJSON{Threshold: 3000},
	}}
	m := New(src, "http://pi")

	next, _ := m.Update(m.fetchCmd()())
	view := next.View()
	for _, want := range []string{"ALERT", "ACTIVE", "3512 / 4095", "connected"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModelKeepsLastStatusOnError(t *testing.T) {
	src := &fakeSource{st: status.StatusInner{Mode: "NORMAL", Alert: "CLEAR", LastReading: 42}}
	m := New(src, "http://pi")
	next, _ := m.Update(m.fetchCmd()())

	src.err = errors.New("connection refused")
	next, _ = next.Update(next.(Model).fetchCmd()())

	view := next.View()
	if !strings.Contains(view, "42 / 4095") {
		t.Error("last reading should stay visible")
	}
	if !strings.Contains(view, "connection refused") {
		t.Error("error should be shown")
	}
}

func TestModelHistoryBounded(t *testing.T) {
	m := New(&fakeSource{}, "")
	var model tea.Model = m
	for i := 0; i < historyLen+10; i++ {
		model, _ = model.Update(statusMsg{status.StatusInner{LastReading: i}})
	}
	h := model.(Model).history
	if len(h) != historyLen {
		t.Fatalf("history: got %d, want %d", len(h), historyLen)
	}
	if h[0] != 10 {
		t.Errorf("oldest: got %d, want 10", h[0])
	}
}

func TestSparkline(t *testing.T) {
	got := sparkline([]int{0, 4095, -5, 9999}, 0)
	if got != "▁█▁█" {
		t.Errorf("sparkline: got %q", got)
	}
}

func TestClient(t *testing.T) {
	var toggles int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/index.json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":{"mode":"ALERT","alert":"CLEAR","last_reading":77}}`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/toggle":
			toggles++
			w.WriteHeader(http.StatusAccepted)
			w.Write([]byte(`{"pending":true,"coalesced":true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	c := NewClient(ts.URL + "/")
	st, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Mode != "ALERT" || st.LastReading != 77 {
		t.Errorf("Status: got %+v", st)
	}

	coalesced, err := c.Toggle(context.Background())
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !coalesced || toggles != 1 {
		t.Errorf("Toggle: got coalesced=%v toggles=%d", coalesced, toggles)
	}
}

func TestClientErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewClient(ts.URL)
	if _, err := c.Status(context.Background()); err == nil {
		t.Error("expected Status error")
	}
	if _, err := c.Toggle(context.Background()); err == nil {
		t.Error("expected Toggle error")
	}
}
