package fs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/proteoparc/proteoparc/internal/domain"
)

// LineWidth is the number of residues per FASTA sequence line.
const LineWidth = 60

// WriteFASTA writes c to w, one header line per record followed by the
// sequence wrapped at LineWidth.
func WriteFASTA(w io.Writer, c domain.Collection) error {
	for _, r := range c {
		if _, err := fmt.Fprintf(w, ">%s\n", r.Header); err != nil {
			return err
		}
		s := r.Sequence
		for len(s) > LineWidth {
			if _, err := io.WriteString(w, s[:LineWidth]+"\n"); err != nil {
				return err
			}
			s = s[LineWidth:]
		}
		if s != "" {
			if _, err := io.WriteString(w, s+"\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteFASTAFile writes c to path atomically. An empty collection produces
// an empty file.
func WriteFASTAFile(path string, c domain.Collection) error {
	if err := writeAtomic(path, func(w io.Writer) error { return WriteFASTA(w, c) }); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ErrNoHeader is returned when sequence data appears before the first
// header line.
var ErrNoHeader = errors.New("sequence data before first header")

// ReadFASTAFile maps path into memory and parses it. Sequence lines are
// joined and stripped of whitespace; record order is file order.
func ReadFASTAFile(path string) (domain.Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	// zero-length files cannot be mapped
	if fi.Size() == 0 {
		return domain.Collection{}, nil
	}

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", path, err)
	}
	defer mm.Unmap()

	c, err := ParseFASTA(mm)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseFASTA parses FASTA text. Blank lines are ignored. The returned
// records do not alias data.
func ParseFASTA(data []byte) (domain.Collection, error) {
	var (
		out    domain.Collection
		header string
		seq    []byte
		open   bool
	)
	flush := func() {
		if open {
			out = append(out, domain.SequenceRecord{Header: header, Sequence: string(seq)})
		}
	}

	for lineNo := 1; len(data) > 0; lineNo++ {
		var line []byte
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			line, data = data, nil
		}
		line = bytes.TrimRight(line, "\r")

		if len(line) > 0 && line[0] == '>' {
			flush()
			header = string(bytes.TrimSpace(line[1:]))
			seq = seq[:0]
			open = true
			continue
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if !open {
			return nil, fmt.Errorf("line %d: %w", lineNo, ErrNoHeader)
		}
		for _, f := range bytes.Fields(line) {
			seq = append(seq, f...)
		}
	}
	flush()
	return out, nil
}
