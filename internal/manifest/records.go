package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/enumtrait/internal/orm/record"
	"github.com/conduit-lang/enumtrait/internal/orm/schema"
)

// RecordSet is a list of records to write through their models
type RecordSet struct {
	Records []RecordSpec `yaml:"records"`
}

// RecordSpec names a model and the attributes to assign
type RecordSpec struct {
	Model      string                 `yaml:"model"`
	Attributes map[string]interface{} `yaml:"attributes"`
}

// LoadRecords decodes a records file
func LoadRecords(r io.Reader) (*RecordSet, error) {
	var rs RecordSet
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rs); err != nil {
		if errors.Is(err, io.EOF) {
			return &rs, nil
		}
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return &rs, nil
}

// LoadRecordsFile decodes the records file stored at path
func LoadRecordsFile(path string) (*RecordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records: %w", err)
	}
	defer f.Close()
	return LoadRecords(f)
}

// Build writes each entry's attributes through a new record of its model.
// Attributes are assigned in name order.
func (s *RecordSet) Build(schemas *schema.Registry) ([]*record.Record, error) {
	out := make([]*record.Record, 0, len(s.Records))
	for i, entry := range s.Records {
		model, ok := schemas.Get(entry.Model)
		if !ok {
			return nil, fmt.Errorf("record %d: unknown model %s", i, entry.Model)
		}
		rec, err := record.Load(model, entry.Attributes)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
