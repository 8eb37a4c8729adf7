package airport

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

// writeRawSnapshot compresses the given header fields so decode failures
// past the magic can be exercised.
func writeRawSnapshot(t *testing.T, path string, fields ...any) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	enc, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range fields {
		if err := binary.Write(enc, binary.LittleEndian, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ds := &Dataset{
		SchemaVersion: 3,
		LastUpdated:   "2026-08-01T12:00:00Z",
		Airports: []Airport{
			{ICAO: "EDDM", Name: "Munich", Lat: 48.35, Lng: 11.78, Status: StatusReleased,
				Downloads: 900, UpdatedAt: "2026-05-01T00:00:00Z",
				Continent: "EU", Country: "DE", CountryName: "Germany",
				Link: "https://example.com/eddm", Community: true},
			{ICAO: "XXXX", Name: "No coords", Lat: math.NaN(), Lng: math.NaN(), Status: StatusBase},
		},
	}

	path := filepath.Join(t.TempDir(), "airports.snapshot.zst")
	if err := SaveSnapshot(ds, path); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	got, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if got.SchemaVersion != ds.SchemaVersion || got.LastUpdated != ds.LastUpdated {
		t.Errorf("metadata mismatch: %+v", got)
	}
	if len(got.Airports) != 2 {
		t.Fatalf("expected 2 airports, got %d", len(got.Airports))
	}

	a := got.Airports[0]
	want := ds.Airports[0]
	if a.ICAO != want.ICAO || a.Name != want.Name || a.Lat != want.Lat || a.Lng != want.Lng ||
		a.Status != want.Status || a.Downloads != want.Downloads || a.UpdatedAt != want.UpdatedAt ||
		a.Continent != want.Continent || a.Country != want.Country || a.CountryName != want.CountryName ||
		a.Link != want.Link || a.Community != want.Community {
		t.Errorf("record mismatch:\nwant %+v\ngot  %+v", want, a)
	}

	// NaN coordinates survive as missing.
	if got.Airports[1].HasCoords() {
		t.Error("missing coordinates must survive the round trip")
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.zst")); err == nil {
		t.Error("expected an error for a missing snapshot")
	}
}

func TestLoadSnapshotTruncatedHeader(t *testing.T) {
	// Magic and version only; the schema version read must fail rather
	// than decode as an empty dataset.
	path := filepath.Join(t.TempDir(), "truncated.zst")
	writeRawSnapshot(t, path, snapshotMagic, snapshotVersion)

	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected an error for a snapshot truncated after the header")
	}
}

func TestLoadSnapshotTruncatedBeforeCount(t *testing.T) {
	// Valid header and metadata but no record count.
	path := filepath.Join(t.TempDir(), "nocount.zst")
	writeRawSnapshot(t, path,
		snapshotMagic, snapshotVersion, int32(1), uint32(0))

	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected an error for a snapshot missing the record count")
	}
}

func TestLoadSnapshotRejectsImplausibleStringLength(t *testing.T) {
	// A corrupt metadata length prefix must error out, not allocate.
	path := filepath.Join(t.TempDir(), "hugestring.zst")
	writeRawSnapshot(t, path,
		snapshotMagic, snapshotVersion, int32(1), uint32(0xFFFFFFFF))

	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected an error for an implausible string length")
	}
}

func TestLoadSnapshotEmptyDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.zst")
	ds := &Dataset{Airports: nil}
	if err := SaveSnapshot(ds, path); err != nil {
		t.Fatal(err)
	}
	// Empty dataset is still a valid snapshot.
	got, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("empty snapshot should load: %v", err)
	}
	if len(got.Airports) != 0 {
		t.Errorf("expected no airports, got %d", len(got.Airports))
	}
}
