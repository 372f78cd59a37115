// Package vault persists benefit records, one overwrite-by-issuer unit at a time.
package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/cerebro/internal/schemas"
	"github.com/jonathan/cerebro/internal/types"
	schemafiles "github.com/jonathan/cerebro/schemas"
)

// FileStore writes each issuer's records to <Dir>/<issuer_id>.json.
type FileStore struct {
	Dir       string
	validator *schemas.Validator
}

// NewFileStore creates a FileStore rooted at dir. Records are checked against
// the benefit record schema before they are written.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("vault directory is empty")
	}
	validator, err := schemas.Compile("benefit_record", schemafiles.BenefitRecords)
	if err != nil {
		return nil, err
	}
	return &FileStore{Dir: dir, validator: validator}, nil
}

// Path returns the file that holds issuerID's records.
func (s *FileStore) Path(issuerID string) string {
	return filepath.Join(s.Dir, issuerID+".json")
}

// Save replaces the issuer's file. The file is written to a temporary name
// and renamed, so readers never see a partial document.
func (s *FileStore) Save(ctx context.Context, issuerID string, records []types.BenefitRecord) error {
	if err := ctx.Err(); err != nil {
		return &SaveError{IssuerID: issuerID, Message: "cancelled", Cause: err}
	}
	if err := checkIssuerID(issuerID); err != nil {
		return &SaveError{IssuerID: issuerID, Message: "invalid issuer id", Cause: err}
	}
	if records == nil {
		records = []types.BenefitRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &SaveError{IssuerID: issuerID, Message: "failed to marshal records", Cause: err}
	}
	if s.validator != nil {
		if err := s.validator.ValidateBytes(data); err != nil {
			return &SaveError{IssuerID: issuerID, Message: "records do not match schema", Cause: err}
		}
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return &SaveError{IssuerID: issuerID, Message: "failed to create vault directory", Cause: err}
	}

	tmp, err := os.CreateTemp(s.Dir, "."+issuerID+".*.tmp")
	if err != nil {
		return &SaveError{IssuerID: issuerID, Message: "failed to create temp file", Cause: err}
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return &SaveError{IssuerID: issuerID, Message: "failed to write records", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &SaveError{IssuerID: issuerID, Message: "failed to write records", Cause: err}
	}
	if err := os.Rename(tmpName, s.Path(issuerID)); err != nil {
		return &SaveError{IssuerID: issuerID, Message: "failed to replace vault file", Cause: err}
	}
	return nil
}

// Load reads the issuer's records back.
func (s *FileStore) Load(issuerID string) ([]types.BenefitRecord, error) {
	if err := checkIssuerID(issuerID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(issuerID))
	if err != nil {
		return nil, fmt.Errorf("failed to read vault file: %w", err)
	}
	var records []types.BenefitRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse vault file: %w", err)
	}
	return records, nil
}

// checkIssuerID rejects ids that would escape the vault directory.
func checkIssuerID(issuerID string) error {
	switch {
	case issuerID == "":
		return fmt.Errorf("issuer id is empty")
	case issuerID == "." || issuerID == "..":
		return fmt.Errorf("issuer id %q is not a file name", issuerID)
	case strings.ContainsAny(issuerID, `/\`):
		return fmt.Errorf("issuer id %q contains a path separator", issuerID)
	}
	return nil
}
