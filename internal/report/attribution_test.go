package report

import (
	"testing"

	"github.com/wowsimlabs/simops/internal/models"
)

func activeFault(id string) models.FaultInfo {
	return models.FaultInfo{ID: id, Mode: "tick_scoped", Active: true, Activations: 1}
}

func TestAttributeFaultsFullSignatureMatch(t *testing.T) {
	attrs := AttributeFaults(
		[]models.FaultInfo{activeFault(models.FaultLatencySpike)},
		[]models.Anomaly{
			{Category: models.CategoryLatencySpike, Severity: models.AnomalyCritical},
			{Category: models.CategoryLatencySpike, Severity: models.AnomalyWarning},
		},
	)
	if len(attrs) != 1 {
		t.Fatalf("expected 1 attribution, got %d", len(attrs))
	}
	if attrs[0].FaultID != models.FaultLatencySpike {
		t.Errorf("unexpected fault: %s", attrs[0].FaultID)
	}
	if attrs[0].Score != 1.0 {
		t.Errorf("full signature match must score 1.0, got %g", attrs[0].Score)
	}
	if len(attrs[0].Notes) != 1 {
		t.Errorf("expected one note, got %v", attrs[0].Notes)
	}
}

func TestAttributeFaultsPartialSignature(t *testing.T) {
	// memory-pressure expects latency spikes and error bursts; only the
	// burst is present, so half the signature matched.
	attrs := AttributeFaults(
		[]models.FaultInfo{activeFault(models.FaultMemoryPressure)},
		[]models.Anomaly{{Category: models.CategoryErrorBurst, Severity: models.AnomalyCritical}},
	)
	if len(attrs) != 1 {
		t.Fatalf("expected 1 attribution, got %d", len(attrs))
	}
	if attrs[0].Score != 0.7 {
		t.Errorf("half signature must score 0.7, got %g", attrs[0].Score)
	}
}

func TestAttributeFaultsOrderingAndFiltering(t *testing.T) {
	// slow-leak fully matches the latency signature, memory-pressure only
	// half of its own; session-crash has no matching category and the
	// last fault has no known signature at all.
	active := []models.FaultInfo{
		activeFault(models.FaultMemoryPressure),
		activeFault(models.FaultSlowLeak),
		activeFault(models.FaultSessionCrash),
		activeFault("experimental-chaos-fault"),
	}
	anomalies := []models.Anomaly{
		{Category: models.CategoryLatencySpike, Severity: models.AnomalyWarning},
	}
	attrs := AttributeFaults(active, anomalies)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributions, got %d: %+v", len(attrs), attrs)
	}
	if attrs[0].FaultID != models.FaultSlowLeak || attrs[1].FaultID != models.FaultMemoryPressure {
		t.Errorf("expected slow-leak before memory-pressure, got %s then %s", attrs[0].FaultID, attrs[1].FaultID)
	}
}

func TestAttributeFaultsTieBreaksOnID(t *testing.T) {
	// latency-spike and slow-leak share a signature; order must be stable.
	active := []models.FaultInfo{
		activeFault(models.FaultSlowLeak),
		activeFault(models.FaultLatencySpike),
	}
	anomalies := []models.Anomaly{{Category: models.CategoryLatencySpike, Severity: models.AnomalyWarning}}
	attrs := AttributeFaults(active, anomalies)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributions, got %d", len(attrs))
	}
	if attrs[0].FaultID != models.FaultLatencySpike || attrs[1].FaultID != models.FaultSlowLeak {
		t.Errorf("ties must order by fault id: got %s then %s", attrs[0].FaultID, attrs[1].FaultID)
	}
}

func TestAttributeFaultsEmptyInputs(t *testing.T) {
	if attrs := AttributeFaults(nil, []models.Anomaly{{Category: models.CategoryErrorBurst}}); attrs != nil {
		t.Errorf("no active faults must yield nil, got %+v", attrs)
	}
	if attrs := AttributeFaults([]models.FaultInfo{activeFault(models.FaultSlowLeak)}, nil); attrs != nil {
		t.Errorf("no anomalies must yield nil, got %+v", attrs)
	}
}
