package physics

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/zstd"
	"github.com/nwaples/rardecode/v2"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Magic bytes used to detect a table file's format before picking an
// extractor, independent of its file extension.
var (
	magicZIP  = []byte{0x50, 0x4B, 0x03, 0x04}
	magic7z   = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip = []byte{0x1F, 0x8B}
	magicRAR  = []byte{0x52, 0x61, 0x72, 0x21}
	magicXZ   = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}
	magicZstd = []byte{0x28, 0xB5, 0x2F, 0xFD}
	magicLZ4  = []byte{0x04, 0x22, 0x4D, 0x18}
)

// ErrNoCSVEntry is returned when an archive contains no .csv member.
var ErrNoCSVEntry = errors.New("physics: no .csv entry found in archive")

// ErrUnsupportedTableFormat is returned for a file that matches no known
// archive or compression format.
var ErrUnsupportedTableFormat = errors.New("physics: unsupported table file format")

// OpenTableFile opens path, transparently extracting a CSV table from a
// ZIP, 7z, RAR, gzip, tar.gz, xz, zstd, brotli or lz4 container if needed,
// and returns a reader positioned at the start of the decoded CSV.
func OpenTableFile(path string) (io.Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("physics: reading %s: %w", path, err)
	}

	switch detectFormat(data, path) {
	case formatZIP:
		return extractFirstCSVFromZip(data)
	case format7z:
		return extractFirstCSVFrom7z(path)
	case formatRAR:
		return extractFirstCSVFromRAR(path)
	case formatTarGzip:
		return extractFirstCSVFromTarGzip(data)
	case formatGzip:
		gr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("physics: opening gzip: %w", err)
		}
		return gr, nil
	case formatXZ:
		xr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("physics: opening xz: %w", err)
		}
		return xr, nil
	case formatZstd:
		zr, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("physics: opening zstd: %w", err)
		}
		return zr.IOReadCloser(), nil
	case formatLZ4:
		return lz4.NewReader(bytes.NewReader(data)), nil
	case formatBrotli:
		return brotli.NewReader(bytes.NewReader(data)), nil
	case formatRawCSV:
		return bytes.NewReader(data), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTableFormat, path)
	}
}

type tableFormat int

const (
	formatUnknown tableFormat = iota
	formatRawCSV
	formatZIP
	format7z
	formatRAR
	formatGzip
	formatTarGzip
	formatXZ
	formatZstd
	formatLZ4
	formatBrotli
)

func detectFormat(header []byte, path string) tableFormat {
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case bytes.HasPrefix(header, magicZIP):
		return formatZIP
	case bytes.HasPrefix(header, magic7z):
		return format7z
	case bytes.HasPrefix(header, magicRAR):
		return formatRAR
	case bytes.HasPrefix(header, magicXZ):
		return formatXZ
	case bytes.HasPrefix(header, magicZstd):
		return formatZstd
	case bytes.HasPrefix(header, magicLZ4):
		return formatLZ4
	case bytes.HasPrefix(header, magicGzip):
		if strings.HasSuffix(strings.ToLower(path), ".tar.gz") || strings.HasSuffix(strings.ToLower(path), ".tgz") {
			return formatTarGzip
		}
		return formatGzip
	}

	switch ext {
	case ".csv":
		return formatRawCSV
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".rar":
		return formatRAR
	case ".xz":
		return formatXZ
	case ".zst":
		return formatZstd
	case ".lz4":
		return formatLZ4
	case ".br":
		return formatBrotli
	}
	return formatUnknown
}

func isCSVFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".csv")
}

func extractFirstCSVFromZip(data []byte) (io.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("physics: opening zip: %w", err)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !isCSVFile(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("physics: reading %s: %w", f.Name, err)
		}
		defer rc.Close()
		buf, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("physics: reading %s: %w", f.Name, err)
		}
		return bytes.NewReader(buf), nil
	}
	return nil, ErrNoCSVEntry
}

func extractFirstCSVFrom7z(path string) (io.Reader, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("physics: opening 7z: %w", err)
	}
	defer r.Close()
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isCSVFile(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("physics: reading %s: %w", f.Name, err)
		}
		defer rc.Close()
		buf, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("physics: reading %s: %w", f.Name, err)
		}
		return bytes.NewReader(buf), nil
	}
	return nil, ErrNoCSVEntry
}

// extractFirstCSVFromRAR scans a RAR archive's entries in order and
// returns the first .csv member found.
func extractFirstCSVFromRAR(path string) (io.Reader, error) {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("physics: opening rar: %w", err)
	}
	defer r.Close()

	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("physics: reading rar entry: %w", err)
		}
		if header.IsDir || !isCSVFile(header.Name) {
			continue
		}
		buf, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("physics: reading %s: %w", header.Name, err)
		}
		return bytes.NewReader(buf), nil
	}
	return nil, ErrNoCSVEntry
}

func extractFirstCSVFromTarGzip(data []byte) (io.Reader, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("physics: opening tar.gz: %w", err)
	}
	defer gr.Close()

	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("physics: reading tar entry: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || !isCSVFile(hdr.Name) {
			continue
		}
		buf, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("physics: reading %s: %w", hdr.Name, err)
		}
		return bytes.NewReader(buf), nil
	}
	return nil, ErrNoCSVEntry
}
