// Package tsvfile stores vectors and totals as tab separated text files.
//
// A vector file has one entry per line followed by alternating feature and
// weight fields:
//
//	dog/N	amod:red/J	2	nn:house/N	1
//
// A totals file has one key and one total per line.
package tsvfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/apt/internal/logging"
	"github.com/cognicore/apt/pkg/apt/internalerr"
	"github.com/cognicore/apt/pkg/apt/report"
	"github.com/cognicore/apt/pkg/apt/totals"
	"github.com/cognicore/apt/pkg/apt/vector"
)

const (
	sep = "\t"

	// how often long loops look at the context
	checkEvery = 1024
)

// Store is a store.Store over a directory of flat files. Relative names are
// resolved against Dir; absolute names are used as is.
type Store struct {
	Dir string
	log logrus.FieldLogger
}

// New creates a store rooted at dir ("" for the working directory).
func New(dir string, log logrus.FieldLogger) *Store {
	return &Store{Dir: dir, log: logging.Or(log)}
}

// Path returns the file a name refers to.
func (s *Store) Path(name string) string {
	if filepath.IsAbs(name) || s.Dir == "" {
		return name
	}
	return filepath.Join(s.Dir, name)
}

func (s *Store) open(name string) (*os.File, error) {
	f, err := os.Open(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", name, err, internalerr.ErrResource)
	}
	return f, nil
}

// eachLine calls fn for every non-empty line, without its line ending.
func eachLine(ctx context.Context, r io.Reader, fn func(lineNo int, line string)) error {
	br := bufio.NewReaderSize(r, 1<<16)
	for lineNo := 1; ; lineNo++ {
		if lineNo%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		line, err := br.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			fn(lineNo, line)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %v: %w", lineNo, err, internalerr.ErrResource)
		}
	}
}

// ReadVectors loads a vector file.
func (s *Store) ReadVectors(ctx context.Context, name string) (vector.Collection, report.Counts, error) {
	f, err := s.open(name)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	log := s.log.WithField("file", name)
	c := make(vector.Collection)
	counts := report.Counts{}

	err = eachLine(ctx, f, func(lineNo int, line string) {
		entry, v, bad := parseVectorLine(line)
		if bad > 0 {
			counts.Inc(report.ParseError, bad)
			log.WithField("line", lineNo).Debugf("dropped %d malformed fields of %s", bad, entry)
		}
		c.Merge(entry, v)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", name, err)
	}

	if n := counts.Get(report.ParseError); n > 0 {
		log.WithField("fields", n).Warn("dropped malformed features")
	}
	log.WithField("entries", len(c)).Debug("loaded vectors")
	return c, counts, nil
}

// parseVectorLine splits a vector line. bad counts the features dropped
// because their weight was missing, did not parse or was not finite.
func parseVectorLine(line string) (entry string, v vector.Vector, bad int) {
	fields := strings.Split(line, sep)
	entry = fields[0]
	rest := fields[1:]
	v = make(vector.Vector, len(rest)/2)

	for i := 0; i+1 < len(rest); i += 2 {
		w, err := parseWeight(rest[i+1])
		if err != nil {
			bad++
			continue
		}
		v[rest[i]] += w
	}
	if len(rest)%2 == 1 {
		bad++
	}
	return entry, v, bad
}

// parseWeight parses a finite weight. Inf and NaN are malformed.
func parseWeight(field string) (float64, error) {
	w, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return 0, fmt.Errorf("weight %q: %w", field, internalerr.ErrParse)
	}
	return w, nil
}

// ReadTotals loads a totals file. Later lines for the same key replace
// earlier ones.
func (s *Store) ReadTotals(ctx context.Context, name string) (totals.Totals, report.Counts, error) {
	f, err := s.open(name)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	log := s.log.WithField("file", name)
	t := make(totals.Totals)
	counts := report.Counts{}

	err = eachLine(ctx, f, func(lineNo int, line string) {
		key, val, ok := strings.Cut(line, sep)
		if !ok {
			counts.Inc(report.ParseError, 1)
			log.WithField("line", lineNo).Debug("total without a value")
			return
		}
		w, err := parseWeight(val)
		if err != nil {
			counts.Inc(report.ParseError, 1)
			log.WithField("line", lineNo).Debugf("bad total %q for %s", val, key)
			return
		}
		t[key] = w
	})
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", name, err)
	}

	if n := counts.Get(report.ParseError); n > 0 {
		log.WithField("lines", n).Warn("dropped malformed totals")
	}
	return t, counts, nil
}

// WriteVectors writes c with entries and features in ascending order.
func (s *Store) WriteVectors(ctx context.Context, name string, c vector.Collection) error {
	return s.write(ctx, name, func(w *bufio.Writer) error {
		for i, entry := range c.Entries() {
			if i%checkEvery == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			v := c[entry]
			if len(v) == 0 {
				continue
			}
			w.WriteString(entry)
			for _, f := range v.Features() {
				w.WriteString(sep)
				w.WriteString(f)
				w.WriteString(sep)
				w.WriteString(formatFloat(v[f]))
			}
			if err := w.WriteByte('\n'); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteTotals writes t with keys in ascending order.
func (s *Store) WriteTotals(ctx context.Context, name string, t totals.Totals) error {
	return s.write(ctx, name, func(w *bufio.Writer) error {
		for _, k := range t.Keys() {
			w.WriteString(k)
			w.WriteString(sep)
			w.WriteString(formatFloat(t[k]))
			if err := w.WriteByte('\n'); err != nil {
				return err
			}
		}
		return nil
	})
}

// write fills a temporary file next to the target and renames it into place,
// so a failed stage never leaves a partial output behind.
func (s *Store) write(ctx context.Context, name string, fill func(*bufio.Writer) error) error {
	path := s.Path(name)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %v: %w", dir, err, internalerr.ErrResource)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create %s: %v: %w", name, err, internalerr.ErrResource)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriterSize(tmp, 1<<16)
	if err := fill(w); err != nil {
		tmp.Close()
		if ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("write %s: %v: %w", name, err, internalerr.ErrResource)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %v: %w", name, err, internalerr.ErrResource)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %v: %w", name, err, internalerr.ErrResource)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %v: %w", name, err, internalerr.ErrResource)
	}
	s.log.WithField("file", name).Debug("wrote file")
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
