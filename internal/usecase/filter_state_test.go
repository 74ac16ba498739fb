package usecase

import (
	"testing"

	"github.com/user/log-console/internal/domain"
)

func TestFilterState_Toggles(t *testing.T) {
	state := NewFilterState()

	state.ToggleProducer(domain.ProducerAPI)
	if _, ok := state.Snapshot().Producers[domain.ProducerAPI]; !ok {
		t.Fatal("producer not selected after toggle")
	}
	state.ToggleProducer(domain.ProducerAPI)
	if len(state.Snapshot().Producers) != 0 {
		t.Fatal("producer still selected after second toggle")
	}

	state.ToggleSubType(domain.ProducerGeneral, string(domain.LevelError))
	state.ToggleSubType(domain.ProducerGeneral, string(domain.LevelError))
	if len(state.Snapshot().SubTypes) != 0 {
		t.Fatal("sub-type set not removed when emptied")
	}
}

func TestFilterState_ClearAllSourceFilters(t *testing.T) {
	state := NewFilterState()
	state.ToggleClass("AuthService")
	state.ToggleSourceName("PaymentService")
	state.ToggleFilePath("lib/auth.dart")

	state.ClearAllSourceFilters()

	snap := state.Snapshot()
	if len(snap.Classes)+len(snap.SourceNames)+len(snap.FilePaths) != 0 {
		t.Errorf("facet sets not empty after ClearAllSourceFilters: %+v", snap)
	}
}

func TestFilterState_ClearSingleFacet(t *testing.T) {
	populate := func() *FilterState {
		state := NewFilterState()
		state.ToggleClass("AuthService")
		state.ToggleSourceName("PaymentService")
		state.ToggleFilePath("lib/auth.dart")
		return state
	}

	t.Run("classes", func(t *testing.T) {
		state := populate()
		state.ClearClassFilters()
		snap := state.Snapshot()
		if len(snap.Classes) != 0 {
			t.Errorf("classes not cleared: %+v", snap.Classes)
		}
		if len(snap.SourceNames) != 1 || len(snap.FilePaths) != 1 {
			t.Errorf("ClearClassFilters touched other facets: %+v", snap)
		}
	})

	t.Run("source names", func(t *testing.T) {
		state := populate()
		state.ClearSourceNameFilters()
		snap := state.Snapshot()
		if len(snap.SourceNames) != 0 {
			t.Errorf("source names not cleared: %+v", snap.SourceNames)
		}
		if len(snap.Classes) != 1 || len(snap.FilePaths) != 1 {
			t.Errorf("ClearSourceNameFilters touched other facets: %+v", snap)
		}
	})

	t.Run("file paths", func(t *testing.T) {
		state := populate()
		state.ClearFilePathFilters()
		snap := state.Snapshot()
		if len(snap.FilePaths) != 0 {
			t.Errorf("file paths not cleared: %+v", snap.FilePaths)
		}
		if len(snap.Classes) != 1 || len(snap.SourceNames) != 1 {
			t.Errorf("ClearFilePathFilters touched other facets: %+v", snap)
		}
	})
}

func TestFilterState_StatsFilterIdempotentToggle(t *testing.T) {
	state := NewFilterState()

	state.SetStatsFilter(StatsKeyErrorsOnly)
	if got := state.Snapshot().StatsKey; got != StatsKeyErrorsOnly {
		t.Fatalf("stats key = %q, want %q", got, StatsKeyErrorsOnly)
	}

	state.SetStatsFilter(StatsKeyErrorsOnly)
	if got := state.Snapshot().StatsKey; got != "" {
		t.Fatalf("selecting the same key again should clear it, got %q", got)
	}
}

func TestFilterState_ActiveFilterCount(t *testing.T) {
	state := NewFilterState()
	if got := state.ActiveFilterCount(); got != 0 {
		t.Fatalf("fresh state count = %d, want 0", got)
	}

	state.ToggleProducer(domain.ProducerGeneral)
	state.ToggleSubType(domain.ProducerGeneral, string(domain.LevelError))
	state.ToggleSubType(domain.ProducerGeneral, string(domain.LevelWarning))
	state.ToggleClass("AuthService")
	state.UpdateSearchQuery("cache")
	state.SetStatsFilter(StatsKeyErrorsOnly)

	if got := state.ActiveFilterCount(); got != 6 {
		t.Errorf("count = %d, want 6", got)
	}

	state.UpdateSearchQuery("")
	if got := state.ActiveFilterCount(); got != 5 {
		t.Errorf("count after clearing search = %d, want 5", got)
	}
}

func TestFilterState_NotifiesSynchronously(t *testing.T) {
	state := NewFilterState()

	notifications := 0
	state.AddListener(func() { notifications++ })
	second := 0
	state.AddListener(func() { second++ })

	state.ToggleProducer(domain.ProducerAPI)
	state.UpdateSearchQuery("x")
	state.ToggleSortOrder()

	if notifications != 3 || second != 3 {
		t.Errorf("listener calls = (%d, %d), want (3, 3)", notifications, second)
	}

	// The listener observes the already-applied change.
	var observed string
	state.AddListener(func() { observed = state.Snapshot().SearchQuery })
	state.UpdateSearchQuery("applied")
	if observed != "applied" {
		t.Errorf("listener saw %q, want the applied mutation", observed)
	}
}

func TestFilterState_RemoveListener(t *testing.T) {
	state := NewFilterState()
	calls := 0
	id := state.AddListener(func() { calls++ })

	state.ToggleSortOrder()
	state.RemoveListener(id)
	state.ToggleSortOrder()

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestFilterState_DisposePanicsOnMutation(t *testing.T) {
	state := NewFilterState()
	state.AddListener(func() { t.Error("disposed listener invoked") })
	state.Dispose()

	defer func() {
		if recover() == nil {
			t.Error("expected panic on mutation after Dispose")
		}
	}()
	state.UpdateSearchQuery("too late")
}

func TestFilterState_SortOrderDefaultsNewestFirst(t *testing.T) {
	state := NewFilterState()
	if !state.Snapshot().SortNewestFirst {
		t.Fatal("expected newest-first by default")
	}
	state.ToggleSortOrder()
	if state.Snapshot().SortNewestFirst {
		t.Fatal("toggle did not flip sort order")
	}
}

func TestFilterState_SnapshotIsACopy(t *testing.T) {
	state := NewFilterState()
	state.ToggleClass("AuthService")

	snap := state.Snapshot()
	snap.Classes["Injected"] = struct{}{}

	if _, leaked := state.Snapshot().Classes["Injected"]; leaked {
		t.Error("snapshot mutation leaked into state")
	}
}
