package results

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/ahrav/medalbound/internal/domain"
	"github.com/ahrav/medalbound/internal/ports"
)

const (
	// DefaultIMOBaseURL is the IMO results site.
	DefaultIMOBaseURL = "https://www.imo-official.org"

	imoFile     = "IMO_Individual.xml"
	imoMaxTotal = 42
)

var imoAwards = awardScheme{
	source: "imo",
	labels: map[string]int{
		"Gold medal":         0,
		"Silver medal":       1,
		"Bronze medal":       2,
		"Honourable mention": noMedal,
		"":                   noMedal,
	},
	tiers: 3,
}

// imoExcluded lists contestants left out when the jury set boundaries. At
// IMO 2005 two contestants received a mistranslated problem; boundaries
// were set without them and they were then awarded as if they had scored 7
// on that problem.
var imoExcluded = map[int]map[string]bool{
	2005: {"8678": true, "8613": true},
}

var _ ports.ResultsSource = (*IMOSource)(nil)

// IMOSource loads individual IMO results by year.
type IMOSource struct {
	fetcher *Fetcher
	baseURL string
}

// NewIMOSource creates an IMOSource downloading through fetcher from
// baseURL, or DefaultIMOBaseURL when empty.
func NewIMOSource(fetcher *Fetcher, baseURL string) *IMOSource {
	if baseURL == "" {
		baseURL = DefaultIMOBaseURL
	}
	return &IMOSource{fetcher: fetcher, baseURL: strings.TrimRight(baseURL, "/")}
}

// Name implements ports.ResultsSource.
func (s *IMOSource) Name() string { return "imo" }

// URL returns the download address of the results for year.
func (s *IMOSource) URL(year int) string {
	return fmt.Sprintf("%s/year_individual_r.aspx?year=%d&column=total&order=desc&download=XML", s.baseURL, year)
}

// Load implements ports.ResultsSource.
func (s *IMOSource) Load(ctx context.Context, year int) (domain.Instance, error) {
	key := fmt.Sprintf("imo-%d/%s", year, imoFile)
	data, err := s.fetcher.Fetch(ctx, s.Name(), key, s.URL(year))
	if err != nil {
		return domain.Instance{}, fmt.Errorf("imo %d: %w", year, err)
	}
	return ParseIMO(year, bytes.NewReader(data))
}

type imoContestant struct {
	ID    string  `xml:"id,attr"`
	Total string  `xml:"total"`
	Award *string `xml:"award"`
}

// ParseIMO reads the individual results XML for year. Every contestant
// element is counted wherever it appears in the document.
func ParseIMO(year int, r io.Reader) (domain.Instance, error) {
	t := newTally(imoAwards, year, imoMaxTotal)
	excluded := imoExcluded[year]

	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Instance{}, fmt.Errorf("%w: imo %d: %w", ErrMalformedResults, year, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "contestant" {
			continue
		}

		var c imoContestant
		if err := dec.DecodeElement(&c, &start); err != nil {
			return domain.Instance{}, fmt.Errorf("%w: imo %d: %w", ErrMalformedResults, year, err)
		}
		if excluded[c.ID] {
			continue
		}

		total, err := strconv.Atoi(strings.TrimSpace(c.Total))
		if err != nil {
			return domain.Instance{}, fmt.Errorf("%w: imo %d: contestant %s: bad total %q",
				ErrMalformedResults, year, c.ID, c.Total)
		}
		award := ""
		if c.Award != nil {
			award = strings.TrimSpace(*c.Award)
		}
		if err := t.add(total, award); err != nil {
			return domain.Instance{}, err
		}
	}
	return t.instance(), nil
}

// charsetReader decodes documents declaring a legacy encoding such as
// ISO-8859-1.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported encoding %q", ErrMalformedResults, label)
	}
	return enc.NewDecoder().Reader(input), nil
}
