package lichess

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/phrazzld/tactics-srs/internal/domain"
)

// Dump errors
var (
	ErrUnsupportedScheme = errors.New("unsupported puzzle dump url scheme")
	ErrMissingColumn     = errors.New("puzzle dump is missing a required column")
	errBadRow            = errors.New("bad puzzle row")
)

// columnAliases maps each field to the header spellings it may appear under.
var columnAliases = map[string][]string{
	"id":         {"id", "PuzzleId"},
	"rating":     {"rating", "Rating"},
	"rd":         {"rd", "RatingDeviation"},
	"popularity": {"popularity", "Popularity"},
	"nbPlays":    {"nbPlays", "NbPlays"},
	"themes":     {"themes", "Themes"},
	"gameUrl":    {"gameUrl", "GameUrl"},
	"fen":        {"FEN", "fen"},
	"moves":      {"moves", "Moves"},
}

// OpenDump opens a zstd-compressed puzzle CSV at rawURL (file://, http://
// or https://) and returns the decompressed stream. httpClient is used for
// remote dumps; nil means http.DefaultClient.
func OpenDump(ctx context.Context, rawURL string, httpClient *http.Client) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid puzzle dump url: %w", err)
	}

	var src io.ReadCloser
	switch u.Scheme {
	case "file":
		f, err := os.Open(u.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open puzzle dump: %w", err)
		}
		src = f
	case "http", "https":
		if httpClient == nil {
			httpClient = http.DefaultClient
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build dump request: %w", err)
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to download puzzle dump: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
		}
		src = resp.Body
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	dec, err := zstd.NewReader(src)
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("failed to start zstd decoder: %w", err)
	}
	return &dumpStream{dec: dec, src: src}, nil
}

type dumpStream struct {
	dec *zstd.Decoder
	src io.Closer
}

func (d *dumpStream) Read(p []byte) (int, error) { return d.dec.Read(p) }

func (d *dumpStream) Close() error {
	d.dec.Close()
	return d.src.Close()
}

// PuzzleReader decodes puzzle rows from a CSV stream with a header line.
type PuzzleReader struct {
	csv     *csv.Reader
	index   map[string]int
	skipped int
}

// NewPuzzleReader reads the header from r and resolves the column layout.
func NewPuzzleReader(r io.Reader) (*PuzzleReader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read puzzle dump header: %w", err)
	}

	index := make(map[string]int, len(columnAliases))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		for field, aliases := range columnAliases {
			if _, seen := index[field]; seen {
				continue
			}
			for _, alias := range aliases {
				if name == alias {
					index[field] = i
				}
			}
		}
	}
	for _, required := range []string{"id", "rating", "fen", "moves"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	return &PuzzleReader{csv: cr, index: index}, nil
}

// Columns returns the resolved column index of every known field.
func (p *PuzzleReader) Columns() map[string]int {
	out := make(map[string]int, len(p.index))
	for k, v := range p.index {
		out[k] = v
	}
	return out
}

// Skipped returns the number of rows rejected so far.
func (p *PuzzleReader) Skipped() int {
	return p.skipped
}

// Next returns the next valid puzzle, skipping rows that cannot be parsed.
// It returns io.EOF at the end of the stream.
func (p *PuzzleReader) Next() (domain.Puzzle, error) {
	for {
		record, err := p.csv.Read()
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				p.skipped++
				continue
			}
			return domain.Puzzle{}, err
		}

		puzzle, err := p.parse(record)
		if err != nil {
			p.skipped++
			continue
		}
		return puzzle, nil
	}
}

func (p *PuzzleReader) field(record []string, name string) string {
	i, ok := p.index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (p *PuzzleReader) parse(record []string) (domain.Puzzle, error) {
	id := p.field(record, "id")
	fen := p.field(record, "fen")
	moves := p.field(record, "moves")
	if id == "" || fen == "" || moves == "" {
		return domain.Puzzle{}, errBadRow
	}

	rating, err := strconv.Atoi(p.field(record, "rating"))
	if err != nil {
		return domain.Puzzle{}, errBadRow
	}

	optional := func(name string) (*int, error) {
		raw := p.field(record, name)
		if raw == "" {
			v := 0
			return &v, nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errBadRow
		}
		return &v, nil
	}
	rd, err := optional("rd")
	if err != nil {
		return domain.Puzzle{}, err
	}
	popularity, err := optional("popularity")
	if err != nil {
		return domain.Puzzle{}, err
	}
	plays, err := optional("nbPlays")
	if err != nil {
		return domain.Puzzle{}, err
	}

	return domain.Puzzle{
		ID:              id,
		Rating:          &rating,
		RatingDeviation: rd,
		Popularity:      popularity,
		NbPlays:         plays,
		Themes:          domain.SplitThemes(p.field(record, "themes")),
		GameURL:         p.field(record, "gameUrl"),
		FEN:             fen,
		Moves:           moves,
	}, nil
}
