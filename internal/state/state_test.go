package state

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Manager {
	t.Helper()
	m, err := OpenPath(filepath.Join(t.TempDir(), "quaver.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestPrefs_GetMissing(t *testing.T) {
	m := openTestStore(t)

	_, ok, err := m.GetPref("nope")
	if err != nil {
		t.Fatalf("GetPref: %v", err)
	}
	if ok {
		t.Error("GetPref on missing key should report ok=false")
	}
}

func TestPrefs_SetGet(t *testing.T) {
	m := openTestStore(t)

	if err := m.SetPref("slot", "payload"); err != nil {
		t.Fatalf("SetPref: %v", err)
	}

	got, ok, err := m.GetPref("slot")
	if err != nil {
		t.Fatalf("GetPref: %v", err)
	}
	if !ok || got != "payload" {
		t.Errorf("GetPref = (%q, %v), want (payload, true)", got, ok)
	}
}

func TestPrefs_Overwrite(t *testing.T) {
	m := openTestStore(t)

	if err := m.SetPref("slot", "old"); err != nil {
		t.Fatalf("SetPref: %v", err)
	}
	if err := m.SetPref("slot", "new"); err != nil {
		t.Fatalf("SetPref overwrite: %v", err)
	}

	got, _, err := m.GetPref("slot")
	if err != nil {
		t.Fatalf("GetPref: %v", err)
	}
	if got != "new" {
		t.Errorf("GetPref = %q, want new (single slot, not history)", got)
	}
}

func TestPrefs_Delete(t *testing.T) {
	m := openTestStore(t)

	if err := m.SetPref("slot", "x"); err != nil {
		t.Fatalf("SetPref: %v", err)
	}
	if err := m.DeletePref("slot"); err != nil {
		t.Fatalf("DeletePref: %v", err)
	}
	if err := m.DeletePref("slot"); err != nil {
		t.Fatalf("DeletePref again: %v", err)
	}

	_, ok, err := m.GetPref("slot")
	if err != nil {
		t.Fatalf("GetPref: %v", err)
	}
	if ok {
		t.Error("key should be gone after delete")
	}
}
