// Package metadata signs and verifies the manifest written next to an
// exported table folder.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// FileName is the manifest file name inside an exported folder.
const FileName = "manifest.yaml"

// Version is written into every new manifest.
const Version = "1"

// Manifest verification errors.
var (
	ErrNoHashFound  = errors.New("no hash found in manifest")
	ErrHashMismatch = errors.New("hash mismatch")
	ErrUnknownEntry = errors.New("file not listed in manifest")
)

// Entry describes one signed file.
type Entry struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
	Rows int    `yaml:"rows"`
	Hash string `yaml:"hash"`
}

// Manifest contains the export status information.
type Manifest struct {
	Version    string    `yaml:"version"`
	ExportID   string    `yaml:"export_id"`
	LastModify time.Time `yaml:"last_modify"`
	Validation bool      `yaml:"validation"`
	Hash       string    `yaml:"hash"`
	Entries    []Entry   `yaml:"tables"`
}

// CalculateHash computes the SHA-256 hash of data.
func CalculateHash(data []byte) string {
	hash := sha256.Sum256(data)

	return hex.EncodeToString(hash[:])
}

// Add records a file with its row count and content hash.
func (m *Manifest) Add(name, file string, rows int, data []byte) {
	m.Entries = append(m.Entries, Entry{Name: name, File: file, Rows: rows, Hash: CalculateHash(data)})
}

// Entry returns the entry for the named table.
func (m *Manifest) Entry(name string) (Entry, bool) {
	i := slices.IndexFunc(m.Entries, func(e Entry) bool { return e.Name == name })
	if i < 0 {
		return Entry{}, false
	}

	return m.Entries[i], true
}

// entriesHash hashes the entry list so that edits to the manifest itself are detected.
func (m *Manifest) entriesHash() string {
	var sb strings.Builder

	sb.WriteString(m.ExportID + "\n")

	for _, e := range m.Entries {
		fmt.Fprintf(&sb, "%s\t%s\t%d\t%s\n", e.Name, e.File, e.Rows, e.Hash)
	}

	return CalculateHash([]byte(sb.String()))
}

// Sign stamps the manifest with a fresh export id, hash and timestamp.
func (m *Manifest) Sign(validated bool) {
	m.Version = Version
	m.ExportID = uuid.NewString()
	m.Validation = validated
	m.LastModify = time.Now().UTC().Truncate(time.Second)
	m.Hash = m.entriesHash()
}

// Verify checks that the entry list matches the manifest hash.
func (m *Manifest) Verify() error {
	if m.Hash == "" {
		return ErrNoHashFound
	}

	if calculated := m.entriesHash(); calculated != m.Hash {
		return fmt.Errorf("%w: manifest expected %s, got %s", ErrHashMismatch, m.Hash, calculated)
	}

	return nil
}

// VerifyFile checks data against the hash recorded for the named table.
func (m *Manifest) VerifyFile(name string, data []byte) error {
	e, ok := m.Entry(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntry, name)
	}

	if calculated := CalculateHash(data); calculated != e.Hash {
		return fmt.Errorf("%w: %s expected %s, got %s", ErrHashMismatch, e.File, e.Hash, calculated)
	}

	return nil
}

// Marshal encodes the manifest as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}

	return data, nil
}

// Parse decodes a YAML manifest and verifies its hash.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if err := m.Verify(); err != nil {
		return nil, err
	}

	return &m, nil
}
