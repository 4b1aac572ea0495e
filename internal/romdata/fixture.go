// Package romdata provides data layers for the editor: a YAML fixture held in
// memory and a SQLite snapshot store. Both implement core.DataLayer and
// core.IconSource.
package romdata

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/dexedit/internal/core"
)

// Fixture is the on-disk dump of every editable table.
//
// Entities[0] is the reserved null entry. Icons are base64-encoded images.
//
//	entities:
//	  - {id: 0, name: "??????"}
//	  - {id: 1, name: Bulbasaur}
//	moves: [Tackle, Growl]
//	slots:
//	  levelup:
//	    1: [{move: 0, level: 1}, {move: 1, level: 3}]
//	flags:
//	  tmcompat:
//	    columns: [5, 6]
//	    reserved: true
//	    rows:
//	      1: [false, true, false]
type Fixture struct {
	Entities []core.Entity                      `yaml:"entities"`
	Moves    []string                           `yaml:"moves"`
	Slots    map[core.TableKind]core.SlotTable  `yaml:"slots,omitempty"`
	Flags    map[core.TableKind]*core.FlagTable `yaml:"flags,omitempty"`
	Icons    map[int]string                     `yaml:"icons,omitempty"`
}

// LoadFixture reads and validates a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes and validates fixture YAML.
func ParseFixture(data []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// Validate checks the structural rules a data layer relies on.
func (fx *Fixture) Validate() error {
	var errs []error
	if len(fx.Entities) == 0 {
		errs = append(errs, errors.New("no entities"))
	}
	for kind, table := range fx.Flags {
		if table == nil {
			errs = append(errs, fmt.Errorf("flags %s: empty table", kind))
			continue
		}
		for key, vec := range table.Rows {
			if len(vec) > table.VectorLen() {
				errs = append(errs, fmt.Errorf("flags %s: entity %d has %d bits, want at most %d",
					kind, key, len(vec), table.VectorLen()))
			}
		}
	}
	for key, icon := range fx.Icons {
		if _, err := base64.StdEncoding.DecodeString(icon); err != nil {
			errs = append(errs, fmt.Errorf("icon %d: %w", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid fixture: %w", errors.Join(errs...))
	}
	return nil
}

// Save writes the fixture as YAML, creating parent directories.
func (fx *Fixture) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create fixture dir: %w", err)
		}
	}
	data, err := yaml.Marshal(fx)
	if err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	// Write next to the target and rename so a failed write keeps the old file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace fixture: %w", err)
	}
	return nil
}

// decodeIcons turns the base64 icon map into raw bytes.
func decodeIcons(icons map[int]string) map[int][]byte {
	out := make(map[int][]byte, len(icons))
	for key, s := range icons {
		if b, err := base64.StdEncoding.DecodeString(s); err == nil {
			out[key] = b
		}
	}
	return out
}

func encodeIcons(icons map[int][]byte) map[int]string {
	if len(icons) == 0 {
		return nil
	}
	out := make(map[int]string, len(icons))
	for key, b := range icons {
		out[key] = base64.StdEncoding.EncodeToString(b)
	}
	return out
}
