package faults

import "testing"

func TestNewRegistryStartsClear(t *testing.T) {
	r := NewRegistry()
	if r.AnyActive() {
		t.Error("new registry should have no active sources")
	}
	if r.OverallSeverity() != SeverityNone {
		t.Errorf("expected SeverityNone, got %s", r.OverallSeverity())
	}
}

func TestSetLatchesAndRecordsFirstSeen(t *testing.T) {
	r := NewRegistry()
	r.Set(GPSLink, 42)
	if !r.Active(GPSLink) {
		t.Error("expected GPSLink active")
	}
	if r.FirstSeenS(GPSLink) != 42 {
		t.Errorf("expected first_seen_s=42, got %d", r.FirstSeenS(GPSLink))
	}
}

func TestSetIsStickyFirstSeenDoesNotUpdate(t *testing.T) {
	r := NewRegistry()
	r.Set(GPSLink, 10)
	r.Set(GPSLink, 99)
	if r.FirstSeenS(GPSLink) != 10 {
		t.Errorf("first_seen_s must not update on repeated Set, got %d", r.FirstSeenS(GPSLink))
	}
}

func TestClearResetsSource(t *testing.T) {
	r := NewRegistry()
	r.Set(StorageIO, 5)
	r.Clear(StorageIO)
	if r.Active(StorageIO) {
		t.Error("expected StorageIO cleared")
	}
	if r.FirstSeenS(StorageIO) != 0 {
		t.Error("expected first_seen_s reset to 0 after clear")
	}
}

func TestAnyCriticalActiveIgnoresWarn(t *testing.T) {
	r := NewRegistry()
	r.Set(StorageMissing, 1) // Warn
	if r.AnyCriticalActive() {
		t.Error("StorageMissing is Warn, should not trip AnyCriticalActive")
	}
	if !r.AnyActive() {
		t.Error("expected AnyActive true")
	}
}

func TestAnyCriticalActiveDetectsCritical(t *testing.T) {
	r := NewRegistry()
	r.Set(EnvSensor, 1)
	if !r.AnyCriticalActive() {
		t.Error("EnvSensor is Critical, expected AnyCriticalActive true")
	}
}

func TestOverallSeverityCriticalDominatesWarn(t *testing.T) {
	r := NewRegistry()
	r.Set(StorageMissing, 1) // Warn
	r.Set(GPSLink, 2)        // Critical
	if r.OverallSeverity() != SeverityCritical {
		t.Errorf("expected Critical to dominate, got %s", r.OverallSeverity())
	}
}

func TestOverallSeverityWarnWhenOnlyWarnActive(t *testing.T) {
	r := NewRegistry()
	r.Set(StorageMissing, 1)
	if r.OverallSeverity() != SeverityWarn {
		t.Errorf("expected Warn, got %s", r.OverallSeverity())
	}
}

func TestActiveSourcesListsOnlyActive(t *testing.T) {
	r := NewRegistry()
	r.Set(GPSLink, 1)
	r.Set(UplinkModem, 1)
	active := r.ActiveSources()
	if len(active) != 2 {
		t.Fatalf("expected 2 active sources, got %d", len(active))
	}
	seen := map[Source]bool{}
	for _, s := range active {
		seen[s] = true
	}
	if !seen[GPSLink] || !seen[UplinkModem] {
		t.Errorf("expected GPSLink and UplinkModem active, got %v", active)
	}
}

func TestSeverityStringNames(t *testing.T) {
	if SeverityCritical.String() != "CRITICAL" {
		t.Error("expected CRITICAL string")
	}
	if SeverityWarn.String() != "WARN" {
		t.Error("expected WARN string")
	}
	if SeverityNone.String() != "NONE" {
		t.Error("expected NONE string")
	}
}
