package airport

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/klauspost/compress/zstd"
)

// Snapshot cache: the decoded dataset written as a zstd-compressed
// binary file so restarts can skip the network fetch. The reader maps
// the file instead of copying it through a read buffer.

const snapshotMagic uint32 = 0x41505453 // "APTS"
const snapshotVersion uint32 = 1

// maxStringLen bounds the length prefix of serialized strings so a
// corrupt snapshot cannot trigger a multi-gigabyte allocation.
const maxStringLen = 1 << 16

func writeString(w io.Writer, s string) {
	binary.Write(w, binary.LittleEndian, uint32(len(s)))
	w.Write([]byte(s))
}

func readString(r io.Reader, buf []byte) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n > maxStringLen {
		return "", fmt.Errorf("implausible string length %d in snapshot", n)
	}
	if int(n) > len(buf) {
		buf = make([]byte, n)
	}
	if _, err := io.ReadFull(r, buf[:n]); err != nil {
		return "", err
	}
	return string(buf[:n]), nil
}

// SaveSnapshot writes the dataset to filename, zstd compressed.
func SaveSnapshot(ds *Dataset, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer file.Close()

	bufWriter := bufio.NewWriterSize(file, 1024*1024)
	enc, err := zstd.NewWriter(bufWriter)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}

	binary.Write(enc, binary.LittleEndian, snapshotMagic)
	binary.Write(enc, binary.LittleEndian, snapshotVersion)
	binary.Write(enc, binary.LittleEndian, int32(ds.SchemaVersion))
	writeString(enc, ds.LastUpdated)
	binary.Write(enc, binary.LittleEndian, uint32(len(ds.Airports)))

	for i := range ds.Airports {
		a := &ds.Airports[i]
		writeString(enc, a.ICAO)
		writeString(enc, a.Name)
		binary.Write(enc, binary.LittleEndian, a.Lat)
		binary.Write(enc, binary.LittleEndian, a.Lng)
		writeString(enc, string(a.Status))
		binary.Write(enc, binary.LittleEndian, a.Downloads)
		writeString(enc, a.UpdatedAt)
		writeString(enc, a.Continent)
		writeString(enc, a.Country)
		writeString(enc, a.CountryName)
		writeString(enc, a.Link)
		community := uint8(0)
		if a.Community {
			community = 1
		}
		binary.Write(enc, binary.LittleEndian, community)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to close zstd writer: %w", err)
	}
	return bufWriter.Flush()
}

// LoadSnapshot memory-maps filename and decodes the dataset from it.
func LoadSnapshot(filename string) (*Dataset, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer file.Close()

	mm, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to mmap snapshot: %w", err)
	}
	defer mm.Unmap()

	dec, err := zstd.NewReader(bytes.NewReader(mm))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer dec.Close()

	var magic, version uint32
	if err := binary.Read(dec, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("failed to read snapshot header: %w", err)
	}
	if magic != snapshotMagic {
		return nil, fmt.Errorf("not a snapshot file: magic %#x", magic)
	}
	if err := binary.Read(dec, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("failed to read snapshot header: %w", err)
	}
	if version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", version)
	}

	ds := &Dataset{}
	var schemaVersion int32
	if err := binary.Read(dec, binary.LittleEndian, &schemaVersion); err != nil {
		return nil, fmt.Errorf("truncated snapshot header: %w", err)
	}
	ds.SchemaVersion = int(schemaVersion)

	buf := make([]byte, 256)
	if ds.LastUpdated, err = readString(dec, buf); err != nil {
		return nil, fmt.Errorf("failed to read snapshot metadata: %w", err)
	}

	var count uint32
	if err := binary.Read(dec, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("truncated snapshot record count: %w", err)
	}
	ds.Airports = make([]Airport, 0, count)

	for i := uint32(0); i < count; i++ {
		var a Airport
		if a.ICAO, err = readString(dec, buf); err != nil {
			return nil, fmt.Errorf("truncated snapshot at record %d: %w", i, err)
		}
		if a.Name, err = readString(dec, buf); err != nil {
			return nil, err
		}
		if err := binary.Read(dec, binary.LittleEndian, &a.Lat); err != nil {
			return nil, fmt.Errorf("truncated snapshot at record %d: %w", i, err)
		}
		if err := binary.Read(dec, binary.LittleEndian, &a.Lng); err != nil {
			return nil, fmt.Errorf("truncated snapshot at record %d: %w", i, err)
		}
		status, err := readString(dec, buf)
		if err != nil {
			return nil, err
		}
		a.Status = Status(status)
		if err := binary.Read(dec, binary.LittleEndian, &a.Downloads); err != nil {
			return nil, fmt.Errorf("truncated snapshot at record %d: %w", i, err)
		}
		if a.UpdatedAt, err = readString(dec, buf); err != nil {
			return nil, err
		}
		if a.Continent, err = readString(dec, buf); err != nil {
			return nil, err
		}
		if a.Country, err = readString(dec, buf); err != nil {
			return nil, err
		}
		if a.CountryName, err = readString(dec, buf); err != nil {
			return nil, err
		}
		if a.Link, err = readString(dec, buf); err != nil {
			return nil, err
		}
		var community uint8
		if err := binary.Read(dec, binary.LittleEndian, &community); err != nil {
			return nil, fmt.Errorf("truncated snapshot at record %d: %w", i, err)
		}
		a.Community = community == 1
		ds.Airports = append(ds.Airports, a)
	}

	return ds, nil
}
