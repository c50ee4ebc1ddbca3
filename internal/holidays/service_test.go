package holidays

import (
	"testing"

	"github.com/bruno.lopes/dutyplanner/internal/database"
)

func TestServiceHolidaysComputesOnMissAndPersists(t *testing.T) {
	db, err := database.Initialize(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	svc, err := NewService(db)
	if err != nil {
		t.Fatal(err)
	}

	dates, err := svc.Holidays("Canada/QC", 2023)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := GetHolidays("Canada/QC", 2023)
	if len(dates) != len(want) {
		t.Fatalf("got %d holidays, want %d", len(dates), len(want))
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM holidays WHERE region = ? AND year = ?`, "Canada/QC", 2023).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != len(want) {
		t.Fatalf("expected the computed holidays to be persisted, found %d rows", count)
	}
}

func TestServiceHolidaysReadsFromDatabaseOnSecondCall(t *testing.T) {
	db, err := database.Initialize(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	svc, err := NewService(db)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Holidays("Canada/QC", 2023); err != nil {
		t.Fatal(err)
	}

	// A second Service instance sharing the DB should see the persisted rows
	// without recomputing, proving the database path (not just the in-process
	// memo cache) is exercised.
	svc2, err := NewService(db)
	if err != nil {
		t.Fatal(err)
	}
	dates, err := svc2.Holidays("Canada/QC", 2023)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := GetHolidays("Canada/QC", 2023)
	if len(dates) != len(want) {
		t.Fatalf("got %d holidays from the database-backed path, want %d", len(dates), len(want))
	}
}

func TestServiceHolidaysPropagatesUnsupportedRegion(t *testing.T) {
	db, err := database.Initialize(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	svc, err := NewService(db)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Holidays("Atlantis", 2023); err == nil {
		t.Fatalf("expected an error for an unsupported region")
	}
}
