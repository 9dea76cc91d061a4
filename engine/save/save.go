// Package save reads and writes save files. A save is an ordered list of
// fields: level path, floor, room x, room y, tile x, tile y, then the held
// keys. On disk the fields are joined by newlines and obfuscated with a
// one-rune cipher key stored in front of the data.
package save

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nathoo/mazecaves/types"
)

// Ext is the file extension of save files.
const Ext = ".save"

// Data is one saved session.
type Data struct {
	LevelPath string
	Floor     int
	RX, RY    int
	X, Y      int
	Keys      []string
}

// Fields returns the ordered field list of a save.
func (d Data) Fields() []string {
	fields := []string{
		d.LevelPath,
		strconv.Itoa(d.Floor),
		strconv.Itoa(d.RX),
		strconv.Itoa(d.RY),
		strconv.Itoa(d.X),
		strconv.Itoa(d.Y),
	}
	return append(fields, d.Keys...)
}

// Parse reads a save from its field list.
func Parse(fields []string) (*Data, error) {
	if len(fields) < 6 {
		return nil, fmt.Errorf("%w: %d fields, want at least 6", types.ErrCorruptedSave, len(fields))
	}
	var nums [5]int
	for i := range nums {
		n, err := strconv.Atoi(strings.TrimSpace(fields[i+1]))
		if err != nil {
			return nil, fmt.Errorf("%w: field %d: %v", types.ErrCorruptedSave, i+1, err)
		}
		nums[i] = n
	}
	return &Data{
		LevelPath: fields[0],
		Floor:     nums[0],
		RX:        nums[1],
		RY:        nums[2],
		X:         nums[3],
		Y:         nums[4],
		Keys:      append([]string(nil), fields[6:]...),
	}, nil
}

// Encode obfuscates a field list with cipher key k (0..127). Every rune r
// of the joined text is stored as (r+k)*10.
func Encode(fields []string, k byte) ([]byte, error) {
	if k > 127 {
		return nil, fmt.Errorf("cipher key %d out of range", k)
	}
	var buf bytes.Buffer
	buf.WriteRune(rune(k))
	for _, r := range strings.Join(fields, "\n") {
		enc := (r + rune(k)) * 10
		if !utf8.ValidRune(enc) {
			return nil, fmt.Errorf("cannot encode %q", r)
		}
		buf.WriteRune(enc)
	}
	return buf.Bytes(), nil
}

// Decode reverses Encode and splits the text into fields. Trailing empty
// fields are dropped.
func Decode(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", types.ErrCorruptedSave)
	}
	k, size := utf8.DecodeRune(data)
	if k == utf8.RuneError || k > 127 {
		return nil, fmt.Errorf("%w: bad cipher key", types.ErrCorruptedSave)
	}
	var b strings.Builder
	for rest := data[size:]; len(rest) > 0; {
		r, n := utf8.DecodeRune(rest)
		if r == utf8.RuneError {
			return nil, fmt.Errorf("%w: invalid encoding", types.ErrCorruptedSave)
		}
		b.WriteRune(r/10 - k)
		rest = rest[n:]
	}
	fields := strings.Split(b.String(), "\n")
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return fields, nil
}

// Write encodes d into path. The save extension is appended when missing.
// Returns the path written.
func Write(path string, d Data, k byte) (string, error) {
	if !strings.HasSuffix(path, Ext) {
		path += Ext
	}
	data, err := Encode(d.Fields(), k)
	if err != nil {
		return "", fmt.Errorf("encoding save: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating save dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing save: %w", err)
	}
	return path, nil
}

// Read loads and parses a save file.
func Read(path string) (*Data, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading save: %w", err)
	}
	fields, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d, err := Parse(fields)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
