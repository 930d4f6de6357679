package delivery

import (
	"testing"

	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/models"
)

func TestDistinctLocationIDs(t *testing.T) {
	records := []models.ConsumptionRecord{
		{ID: 1, LocationID: 3},
		{ID: 2, LocationID: 1},
		{ID: 3, LocationID: 3},
		{ID: 4, LocationID: 2},
	}

	ids := distinctLocationIDs(records)
	want := []uint{1, 2, 3}
	if len(ids) != len(want) {
		t.Fatalf("unidades = %v, esperado %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("unidades = %v, esperado %v", ids, want)
		}
	}
}

func TestRecordsForLocation(t *testing.T) {
	records := []models.ConsumptionRecord{
		{ID: 1, LocationID: 3},
		{ID: 2, LocationID: 1},
		{ID: 3, LocationID: 3},
	}

	got := recordsForLocation(records, 3)
	if len(got) != 2 {
		t.Fatalf("registros da unidade 3 = %d, esperado 2", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 3 {
		t.Errorf("registros = [%d %d], esperado [1 3]", got[0].ID, got[1].ID)
	}

	if got := recordsForLocation(records, 9); len(got) != 0 {
		t.Errorf("unidade sem registros devolveu %d", len(got))
	}
}
