package config

import "testing"

func TestLevels_ZeroPriorityLevelsMeansSingleLevel(t *testing.T) {
	cfg := Config{}
	levels := cfg.Levels()
	if len(levels) != 1 || levels[0] != 0 {
		t.Fatalf("expected a single implicit level 0, got %v", levels)
	}
}

func TestLevels_OrderedAscendingFromOne(t *testing.T) {
	cfg := Config{PriorityLevels: 3}
	levels := cfg.Levels()
	want := []uint32{1, 2, 3}
	if len(levels) != len(want) {
		t.Fatalf("expected %v, got %v", want, levels)
	}
	for i := range want {
		if levels[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, levels)
		}
	}
}

func TestPolicyFor_FallsBackToDefault(t *testing.T) {
	cfg := Config{
		DefaultQueuePolicy: PolicyConfig{MaxQueueSize: 10},
	}
	p := cfg.PolicyFor(1)
	if p.MaxQueueSize != 10 {
		t.Fatalf("expected fallback to DefaultQueuePolicy, got %+v", p)
	}
}

func TestPolicyFor_OverrideWins(t *testing.T) {
	cfg := Config{
		DefaultQueuePolicy: PolicyConfig{MaxQueueSize: 10},
		QueuePolicyMap: map[uint32]PolicyConfig{
			2: {MaxQueueSize: 99},
		},
	}
	if got := cfg.PolicyFor(2).MaxQueueSize; got != 99 {
		t.Fatalf("expected override MaxQueueSize 99, got %d", got)
	}
	if got := cfg.PolicyFor(1).MaxQueueSize; got != 10 {
		t.Fatalf("expected unoverridden level to fall back, got %d", got)
	}
}

func TestTimeoutAction_String(t *testing.T) {
	if got := ActionReject.String(); got != "REJECT" {
		t.Errorf("expected REJECT, got %s", got)
	}
	if got := ActionDelay.String(); got != "DELAY" {
		t.Errorf("expected DELAY, got %s", got)
	}
}
