package grid

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Options controls how delimited text is parsed.
type Options struct {
	Delimiter rune   // field separator, 0 means comma
	Quote     rune   // quote character, 0 means '"'
	Encoding  string // source encoding, see Decoding
}

// DefaultDelimiter returns tab for .tsv paths and comma for everything
// else, stdin included.
func DefaultDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// Decoding maps an encoding name to a decoder. A nil encoding means the
// input is already UTF-8.
func Decoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "-", "")) {
	case "", "utf8":
		return nil, nil
	case "cp437", "ibm437":
		return charmap.CodePage437, nil
	case "latin1", "iso88591":
		return charmap.ISO8859_1, nil
	case "windows1252", "cp1252":
		return charmap.Windows1252, nil
	}
	return nil, fmt.Errorf("unknown encoding %q", name)
}

// LoadFile opens path and loads it with Load.
func LoadFile(path string, opts Options) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, opts)
}

// Load parses delimited text into a Grid. The first record is the header;
// a row-number column is prepended to the header and to every record.
func Load(r io.Reader, opts Options) (*Grid, error) {
	dec, err := Decoding(opts.Encoding)
	if err != nil {
		return nil, err
	}
	if dec != nil {
		r = transform.NewReader(r, dec.NewDecoder())
	}

	quote := opts.Quote
	if quote == 0 {
		quote = '"'
	}
	// encoding/csv only knows '"', so a custom quote character trades
	// places with it on the way in and back out in the fields.
	swap := func(c rune) rune {
		switch c {
		case quote:
			return '"'
		case '"':
			return quote
		}
		return c
	}
	swapped := quote != '"'
	if swapped {
		r = transform.NewReader(r, runes.Map(swap))
	}

	cr := csv.NewReader(r)
	cr.Comma = opts.Delimiter
	if cr.Comma == 0 {
		cr.Comma = ','
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var rows [][]string
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, ErrRowTooLong)
		}
		rows = append(rows, record)
	}

	if swapped {
		for i := range header {
			header[i] = strings.Map(swap, header[i])
		}
		for _, row := range rows {
			for i := range row {
				row[i] = strings.Map(swap, row[i])
			}
		}
	}
	return Numbered(header, rows)
}
