package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bgallie/filters/ascii85"
	"github.com/bgallie/filters/flate"
	"github.com/bgallie/filters/lines"
	"github.com/bgallie/filters/pem"
	"github.com/bgallie/mzenigma/catalog"
)

// Armor selects how FileStore writes the compressed catalog.
type Armor int

const (
	ArmorPEM Armor = iota
	ArmorASCII85
)

const (
	pemType      = "MZENIGMA CATALOG"
	headerPrefix = "+MZC"
	fileSuffix   = ".cat"
)

// FileStore writes one file per catalog into a directory: the gob encoded
// catalog, flate compressed and wrapped in a PEM block or in ascii85 lines
// behind a "+MZC|codec|handle" header line.
type FileStore struct {
	dir   string
	armor Armor
}

func NewFileStore(dir string, armor Armor) *FileStore {
	return &FileStore{dir: dir, armor: armor}
}

func (s *FileStore) Init(_ context.Context) error {
	if s.dir == "" {
		return errors.New("storage: file store directory is required")
	}
	return os.MkdirAll(s.dir, 0700)
}

func (s *FileStore) fileName(handle string) string {
	return filepath.Join(s.dir, strings.ReplaceAll(handle, "/", "_")+fileSuffix)
}

func handleOf(name string) string {
	name = strings.TrimSuffix(filepath.Base(name), fileSuffix)
	if i := strings.LastIndex(name, "_"); i >= 0 {
		return name[:i] + "/" + name[i+1:]
	}
	return name
}

// Save writes the catalog to a temporary file and renames it into place.
func (s *FileStore) Save(_ context.Context, c *catalog.Catalog) (string, error) {
	handle := c.Handle()
	fout, err := os.CreateTemp(s.dir, ".catalog-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(fout.Name())

	gobRdr, gobWrtr := io.Pipe()
	go func() {
		gobWrtr.CloseWithError(encodeTo(gobWrtr, c))
	}()
	compressed := flate.ToFlate(gobRdr)

	switch s.armor {
	case ArmorASCII85:
		if _, err = fmt.Fprintf(fout, "%s|%d|%s\n", headerPrefix, CurrentCodecVersion, handle); err == nil {
			_, err = io.Copy(fout, lines.SplitToLines(ascii85.ToASCII85(compressed)))
		}
	default:
		var blck pem.Block
		blck.Type = pemType
		blck.Headers = map[string]string{
			"Handle":       handle,
			"Model":        c.Model,
			"Entries":      strconv.Itoa(c.Len()),
			"CodecVersion": strconv.Itoa(CurrentCodecVersion),
		}
		_, err = io.Copy(fout, pem.ToPem(bufio.NewReader(compressed), blck))
	}
	if err != nil {
		fout.Close()
		return "", fmt.Errorf("storage: write %s: %w", handle, err)
	}
	if err := fout.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(fout.Name(), s.fileName(handle)); err != nil {
		return "", err
	}
	return handle, nil
}

// Load reads either armor, whichever the file was written with.
func (s *FileStore) Load(_ context.Context, handle string) (*catalog.Catalog, error) {
	fin, err := os.Open(s.fileName(handle))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(handle)
	}
	if err != nil {
		return nil, err
	}
	defer fin.Close()

	bRdr := bufio.NewReader(fin)
	b, err := bRdr.Peek(5)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", handle, err)
	}
	var data *io.PipeReader
	if string(b) == "-----" {
		pRdr, blck := pem.FromPem(bRdr)
		if blck.Type != pemType {
			return nil, fmt.Errorf("storage: %s: unexpected block %q", handle, blck.Type)
		}
		data = flate.FromFlate(pRdr)
	} else {
		line, err := bRdr.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("storage: read %s: %w", handle, err)
		}
		fields := strings.Split(strings.TrimSuffix(line, "\n"), "|")
		if len(fields) != 3 || fields[0] != headerPrefix {
			return nil, fmt.Errorf("storage: %s: bad header %q", handle, line)
		}
		if v, _ := strconv.Atoi(fields[1]); v != CurrentCodecVersion {
			return nil, fmt.Errorf("%w: codec %s, expected %d", ErrVersionMismatch, fields[1], CurrentCodecVersion)
		}
		data = flate.FromFlate(ascii85.FromASCII85(lines.CombineLines(bRdr)))
	}
	defer io.Copy(io.Discard, data)

	c, err := decodeFrom(data)
	if err != nil {
		return nil, err
	}
	if c.Handle() != handle {
		return nil, &catalog.InconsistencyError{Reason: fmt.Sprintf("file for %s holds %s", handle, c.Handle())}
	}
	return c, nil
}

func (s *FileStore) List(_ context.Context) ([]string, error) {
	names, err := filepath.Glob(filepath.Join(s.dir, "*"+fileSuffix))
	if err != nil {
		return nil, err
	}
	handles := make([]string, len(names))
	for i, n := range names {
		handles[i] = handleOf(n)
	}
	sort.Strings(handles)
	return handles, nil
}
