package save

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/nathoo/mazecaves/types"
)

func testData() Data {
	return Data{
		LevelPath: "levels/caves.xml",
		Floor:     2,
		RX:        1,
		RY:        0,
		X:         7,
		Y:         3,
		Keys:      []string{"blue", "red door"},
	}
}

func TestFields(t *testing.T) {
	got := testData().Fields()
	want := []string{"levels/caves.xml", "2", "1", "0", "7", "3", "blue", "red door"}
	if !slices.Equal(got, want) {
		t.Errorf("Fields() = %v, want %v", got, want)
	}
}

func TestParse(t *testing.T) {
	d, err := Parse([]string{"lvl.xml", "0", "1", "2", "3", "4"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.LevelPath != "lvl.xml" || d.Floor != 0 || d.RX != 1 || d.RY != 2 || d.X != 3 || d.Y != 4 {
		t.Errorf("Parse = %+v", d)
	}
	if len(d.Keys) != 0 {
		t.Errorf("Keys = %v, want none", d.Keys)
	}
}

func TestParse_Corrupted(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
	}{
		{"too few", []string{"lvl.xml", "0", "1", "2", "3"}},
		{"not a number", []string{"lvl.xml", "zero", "1", "2", "3", "4"}},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.fields); !errors.Is(err, types.ErrCorruptedSave) {
				t.Errorf("error = %v, want ErrCorruptedSave", err)
			}
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	fields := testData().Fields()
	for _, k := range []byte{0, 1, 42, 127} {
		data, err := Encode(fields, k)
		if err != nil {
			t.Fatalf("Encode(k=%d): %v", k, err)
		}
		got, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode(k=%d): %v", k, err)
		}
		if !slices.Equal(got, fields) {
			t.Errorf("k=%d: decoded %v, want %v", k, got, fields)
		}
	}
}

func TestEncode_Obfuscates(t *testing.T) {
	data, err := Encode([]string{"a"}, 3)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := string([]rune{3, ('a' + 3) * 10})
	if string(data) != want {
		t.Errorf("Encode = %q, want %q", data, want)
	}
}

func TestDecode_Corrupted(t *testing.T) {
	for _, data := range [][]byte{nil, {0xff, 0xfe}, []byte(string(rune(500)) + "x")} {
		if _, err := Decode(data); !errors.Is(err, types.ErrCorruptedSave) {
			t.Errorf("Decode(%q) error = %v, want ErrCorruptedSave", data, err)
		}
	}
}

func TestWriteRead(t *testing.T) {
	dir := t.TempDir()
	path, err := Write(filepath.Join(dir, "slot1"), testData(), 17)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Ext(path) != Ext {
		t.Errorf("path = %s, want %s extension", path, Ext)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("save not written: %v", err)
	}

	d, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := testData()
	if d.LevelPath != want.LevelPath || d.Floor != want.Floor || d.X != want.X || !slices.Equal(d.Keys, want.Keys) {
		t.Errorf("Read = %+v, want %+v", d, want)
	}
}

func TestRead_Missing(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.save")); err == nil {
		t.Error("expected error for missing save")
	}
}
