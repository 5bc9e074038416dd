package storage

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"github.com/bgallie/mzenigma/catalog"
)

const CurrentCodecVersion = 1

var ErrVersionMismatch = errors.New("storage: record version mismatch")

type record struct {
	CodecVersion int
	Catalog      *catalog.Catalog
}

func encodeTo(w io.Writer, c *catalog.Catalog) error {
	return gob.NewEncoder(w).Encode(record{CodecVersion: CurrentCodecVersion, Catalog: c})
}

// decodeFrom reads a record and verifies the fingerprint of the catalog.
func decodeFrom(r io.Reader) (*catalog.Catalog, error) {
	var rec record
	if err := gob.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("storage: decode catalog: %w", err)
	}
	if rec.CodecVersion != CurrentCodecVersion {
		return nil, fmt.Errorf("%w: codec %d, expected %d", ErrVersionMismatch, rec.CodecVersion, CurrentCodecVersion)
	}
	if rec.Catalog == nil {
		return nil, errors.New("storage: record without catalog")
	}
	if err := rec.Catalog.Verify(); err != nil {
		return nil, err
	}
	return rec.Catalog, nil
}

func EncodeCatalog(c *catalog.Catalog) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeTo(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeCatalog(data []byte) (*catalog.Catalog, error) {
	return decodeFrom(bytes.NewReader(data))
}
