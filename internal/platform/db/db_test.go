package db

import "testing"

func TestOpenSQLiteInMemory(t *testing.T) {
	db, err := Open(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT 1").Scan(&n); err != nil {
		t.Fatalf("query: %v", err)
	}
	if n != 1 {
		t.Fatalf("got %d, want 1", n)
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open("mysql", "whatever"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
