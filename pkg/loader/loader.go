// Package loader reads and validates discussion exports.
package loader

import (
	"bytes"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/zeebo/blake3"

	"github.com/panbanda/edslo/pkg/models"
)

// QuestionType is the post type analysed; other posts are skipped.
const QuestionType = "question"

// ErrInvalidExport is returned when the export does not match the expected
// shape or contains unparsable values.
var ErrInvalidExport = errors.New("invalid discussion export")

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "edslo-export.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// exportSchema compiles the embedded schema once.
func exportSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("parse export schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add export schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Dataset is a fully validated export.
type Dataset struct {
	Threads []models.Thread
	Skipped int    // non-question posts
	Source  string // file path, empty for in-memory data
	Digest  string // BLAKE3 of the raw bytes, hex encoded
}

// Loader parses discussion exports.
type Loader struct {
	loc *time.Location
}

// Option is a functional option for configuring Loader.
type Option func(*Loader)

// WithLocation sets the zone for timestamps that carry no offset.
func WithLocation(loc *time.Location) Option {
	return func(l *Loader) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// New creates a new loader.
func New(opts ...Option) *Loader {
	l := &Loader{loc: time.UTC}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and parses the export at path.
func (l *Loader) Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	ds, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ds.Source = path
	return ds, nil
}

// Parse validates data against the export schema and converts it into
// threads. Any malformed thread fails the whole load.
func (l *Loader) Parse(data []byte) (*Dataset, error) {
	sch, err := exportSchema()
	if err != nil {
		return nil, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExport, err)
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExport, err)
	}

	var raw []rawThread
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExport, err)
	}

	ds := &Dataset{Digest: Digest(data)}
	for i, rt := range raw {
		if rt.Type != QuestionType {
			ds.Skipped++
			continue
		}
		thread, err := l.convert(rt)
		if err != nil {
			return nil, fmt.Errorf("%w: thread[%d] #%d: %v", ErrInvalidExport, i, rt.Number, err)
		}
		ds.Threads = append(ds.Threads, thread)
	}
	return ds, nil
}

// Digest returns the hex BLAKE3 hash of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
