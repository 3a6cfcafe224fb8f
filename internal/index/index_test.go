package index

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/starford/apptcal/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "apptcal-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func appt(title string, day, startHour, endHour int) models.Appointment {
	return models.Appointment{
		Title: title,
		Date:  models.Date{Year: 2024, Month: time.May, Day: day},
		Start: models.Clock{Hour: startHour},
		End:   models.Clock{Hour: endHour},
	}
}

type staticList []models.Appointment

func (l staticList) List() []models.Appointment { return l }

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM appointments`).Scan(&count); err != nil {
		t.Fatalf("appointments table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM meta`).Scan(&count); err != nil {
		t.Fatalf("meta table missing: %v", err)
	}
}

func TestRebuildReplacesRows(t *testing.T) {
	db := testDB(t)
	if err := db.Rebuild([]models.Appointment{appt("A", 1, 9, 10), appt("B", 2, 9, 10)}); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if err := db.Rebuild([]models.Appointment{appt("C", 3, 9, 10)}); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	n, err := db.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestSearchByTitle(t *testing.T) {
	db := testDB(t)
	_ = db.Rebuild([]models.Appointment{
		appt("Dentist checkup", 1, 9, 10),
		appt("Gym", 1, 18, 19),
		appt("Dentist followup", 8, 9, 10),
	})

	hits, err := db.Search("Dentist", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(hits))
	}
	positions := map[int]bool{}
	for _, h := range hits {
		positions[h.Position] = true
	}
	if !positions[0] || !positions[2] {
		t.Errorf("positions = %v", positions)
	}
}

func TestBetweenOrdersByDateAndStart(t *testing.T) {
	db := testDB(t)
	_ = db.Rebuild([]models.Appointment{
		appt("late", 2, 15, 16),
		appt("outside", 9, 9, 10),
		appt("early", 2, 8, 9),
		appt("first day", 1, 20, 21),
	})

	hits, err := db.Between(models.Date{Year: 2024, Month: time.May, Day: 1}, models.Date{Year: 2024, Month: time.May, Day: 2})
	if err != nil {
		t.Fatalf("Between: %v", err)
	}
	var titles []string
	for _, h := range hits {
		titles = append(titles, h.Appointment.Title)
	}
	want := []string{"first day", "early", "late"}
	if len(titles) != len(want) {
		t.Fatalf("titles = %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("titles = %v, want %v", titles, want)
			break
		}
	}
	if hits[1].Position != 2 {
		t.Errorf("early position = %d, want 2", hits[1].Position)
	}
}

func TestSyncSkipsWhenChecksumMatches(t *testing.T) {
	db := testDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	list := staticList{appt("A", 1, 9, 10)}

	if err := Sync(db, list, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	cs, err := db.Checksum()
	if err != nil || cs == "" {
		t.Fatalf("checksum = %q, err = %v", cs, err)
	}

	// Tamper with the rows; a matching checksum means Sync leaves them alone.
	if _, err := db.conn.Exec(`DELETE FROM appointments`); err != nil {
		t.Fatal(err)
	}
	if err := Sync(db, list, logger); err != nil {
		t.Fatal(err)
	}
	if n, _ := db.Count(); n != 0 {
		t.Errorf("count = %d, expected untouched index", n)
	}

	if err := Sync(db, append(list, appt("B", 2, 9, 10)), logger); err != nil {
		t.Fatal(err)
	}
	if n, _ := db.Count(); n != 2 {
		t.Errorf("count = %d, want 2 after change", n)
	}
}

// gatedList parks the first List call until gate is closed, returning the
// snapshot it took on entry.
type gatedList struct {
	mu      sync.Mutex
	items   []models.Appointment
	calls   int
	entered chan struct{}
	gate    chan struct{}
}

func (l *gatedList) set(items ...models.Appointment) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = items
}

func (l *gatedList) List() []models.Appointment {
	l.mu.Lock()
	n := l.calls
	l.calls++
	snapshot := append([]models.Appointment{}, l.items...)
	l.mu.Unlock()

	if n == 0 {
		close(l.entered)
		<-l.gate
	}
	return snapshot
}

func TestSyncNeverCommitsOlderSnapshot(t *testing.T) {
	db := testDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	list := &gatedList{entered: make(chan struct{}), gate: make(chan struct{})}
	list.set(appt("A", 1, 9, 10))

	first := make(chan error, 1)
	go func() { first <- Sync(db, list, logger) }()
	<-list.entered

	list.set(appt("A", 1, 9, 10), appt("B", 2, 9, 10))
	second := make(chan error, 1)
	go func() { second <- Sync(db, list, logger) }()

	// Give the second sync a chance to overtake the parked first one.
	time.Sleep(50 * time.Millisecond)
	close(list.gate)

	if err := <-first; err != nil {
		t.Fatalf("first Sync: %v", err)
	}
	if err := <-second; err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if n, _ := db.Count(); n != 2 {
		t.Errorf("count = %d, want 2 (latest snapshot)", n)
	}
}

func TestChecksumEmptyIndex(t *testing.T) {
	db := testDB(t)
	cs, err := db.Checksum()
	if err != nil {
		t.Fatal(err)
	}
	if cs != "" {
		t.Errorf("checksum = %q, want empty", cs)
	}
}
