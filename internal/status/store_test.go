package status

import (
	"testing"

	"github.com/sweeney/rad-monitor/internal/logic"
)

func TestNewStoreDefaults(t *testing.T) {
	s, _ := NewStore(logic.ModeNormal)

	st := s.Read()
	if st.Mode != logic.ModeNormal {
		t.Errorf("Mode: got %s, want NORMAL", st.Mode)
	}
	if st.AlertActive {
		t.Error("expected AlertActive=false initially")
	}
	if st.LastReading != 0 {
		t.Errorf("LastReading: got %d, want 0", st.LastReading)
	}
}

func TestNewStoreInitialAlertMode(t *testing.T) {
	s, _ := NewStore(logic.ModeAlert)

	if s.Mode() != logic.ModeAlert {
		t.Errorf("Mode: got %s, want ALERT", s.Mode())
	}
}

func TestWritersUpdateFields(t *testing.T) {
	s, w := NewStore(logic.ModeNormal)

	w.Mode.Set(logic.ModeAlert)
	w.Alert.Set(true)
	w.Reading.Set(4095)

	if s.Mode() != logic.ModeAlert {
		t.Errorf("Mode: got %s, want ALERT", s.Mode())
	}
	if !s.AlertActive() {
		t.Error("expected AlertActive=true")
	}
	if s.LastReading() != 4095 {
		t.Errorf("LastReading: got %d, want 4095", s.LastReading())
	}
}

func TestModeWriterToggle(t *testing.T) {
	s, w := NewStore(logic.ModeNormal)

	if got := w.Mode.Toggle(); got != logic.ModeAlert {
		t.Errorf("first Toggle: got %s, want ALERT", got)
	}
	if got := w.Mode.Toggle(); got != logic.ModeNormal {
		t.Errorf("second Toggle: got %s, want NORMAL", got)
	}
	if s.Mode() != logic.ModeNormal {
		t.Errorf("Mode: got %s, want NORMAL", s.Mode())
	}
}

func TestNilCountersAreSafe(t *testing.T) {
	var c *Counters

	c.SampleRead()
	c.AlertDropped()
	c.ModeFlipped()

	if snap := c.Snapshot(); snap != (CounterSnapshot{}) {
		t.Errorf("nil Snapshot: got %+v, want zero", snap)
	}
}
