// Package eeprom is the small byte addressable store that keeps the
// display state across restarts.
package eeprom

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// Size of the emulated part
const Size = 256

// record offsets
const (
	DestAddr      = 0x00
	PresAddr      = 0x10
	LastAddr      = 0x20
	LastYearAddr  = 0x30
	AlarmAddr     = 0x40
	RecordLen     = 10
	LastYearLen   = 4
	AlarmLen      = 4
	obfuscateMask = 0x55
)

var ErrRange = errors.New("eeprom: access out of range")

// Storage is read and written in place, writes become durable on Commit.
type Storage interface {
	io.ReaderAt
	io.WriterAt
	Commit() error
}

// Sum is the plain additive checksum of p.
func Sum(p []byte) uint8 {
	var s uint16
	for _, b := range p {
		s += uint16(b)
	}
	return uint8(s & 0xff)
}

// SumXOR adds up every byte xor'ed with 0x55.
func SumXOR(p []byte) uint8 {
	var s uint16
	for _, b := range p {
		s += uint16(b ^ obfuscateMask)
	}
	return uint8(s & 0xff)
}

// Memory keeps the image in RAM. An erased part reads back 0xff.
type Memory struct {
	mu      sync.Mutex
	image   [Size]byte
	commits int
}

func NewMemory() *Memory {
	m := &Memory{}
	m.erase()
	return m
}

func (m *Memory) erase() {
	for i := range m.image {
		m.image[i] = 0xff
	}
}

func checkRange(n int, off int64) error {
	if off < 0 || off+int64(n) > Size {
		return fmt.Errorf("%w: %d+%d", ErrRange, off, n)
	}
	return nil
}

func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := checkRange(len(p), off); err != nil {
		return 0, err
	}
	return copy(p, m.image[off:]), nil
}

func (m *Memory) WriteAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := checkRange(len(p), off); err != nil {
		return 0, err
	}
	return copy(m.image[off:], p), nil
}

func (m *Memory) Commit() error {
	m.mu.Lock()
	m.commits++
	m.mu.Unlock()
	return nil
}

// Commits returns how often Commit was called.
func (m *Memory) Commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits
}

// File backs a Memory image with a file, written through on Commit.
type File struct {
	Memory
	f *os.File
}

// OpenFile loads the image at path, creating an erased one if needed.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("eeprom: open %s: %w", path, err)
	}
	ef := &File{f: f}
	ef.erase()

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("eeprom: stat %s: %w", path, err)
	}
	if st.Size() > 0 {
		if _, err := f.ReadAt(ef.image[:], 0); err != nil && !errors.Is(err, io.EOF) {
			_ = f.Close()
			return nil, fmt.Errorf("eeprom: read %s: %w", path, err)
		}
	}
	return ef, nil
}

func (ef *File) Commit() error {
	ef.mu.Lock()
	defer ef.mu.Unlock()
	ef.commits++
	if _, err := ef.f.WriteAt(ef.image[:], 0); err != nil {
		return fmt.Errorf("eeprom: commit: %w", err)
	}
	return ef.f.Sync()
}

func (ef *File) Close() error {
	return ef.f.Close()
}
