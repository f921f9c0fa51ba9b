package results

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ahrav/medalbound/internal/domain"
	"github.com/ahrav/medalbound/internal/ports"
)

const (
	// DefaultEGMOBaseURL is the EGMO results site.
	DefaultEGMOBaseURL = "https://www.egmo.org/egmos"

	egmoCountriesFile = "countries.csv"
	egmoPeopleFile    = "people.csv"
)

var egmoAwards = awardScheme{
	source: "egmo",
	labels: map[string]int{
		"Gold Medal":         0,
		"Silver Medal":       1,
		"Bronze Medal":       2,
		"Honourable Mention": noMedal,
		"":                   noMedal,
	},
	tiers: 3,
}

// egmoMaxTotal returns the maximum total score of an EGMO. The first EGMO
// had eight problems, the rest six.
func egmoMaxTotal(event int) int {
	if event == 1 {
		return 56
	}
	return 42
}

var _ ports.ResultsSource = (*EGMOSource)(nil)

// EGMOSource loads EGMO results by event number, counting only contestants
// from official European countries.
type EGMOSource struct {
	fetcher *Fetcher
	baseURL string
}

// NewEGMOSource creates an EGMOSource downloading through fetcher from
// baseURL, or DefaultEGMOBaseURL when empty.
func NewEGMOSource(fetcher *Fetcher, baseURL string) *EGMOSource {
	if baseURL == "" {
		baseURL = DefaultEGMOBaseURL
	}
	return &EGMOSource{fetcher: fetcher, baseURL: strings.TrimRight(baseURL, "/")}
}

// Name implements ports.ResultsSource.
func (s *EGMOSource) Name() string { return "egmo" }

// CountriesURL returns the download address of the country list.
func (s *EGMOSource) CountriesURL(event int) string {
	return fmt.Sprintf("%s/egmo%d/countries/countries.csv", s.baseURL, event)
}

// PeopleURL returns the download address of the participant list.
func (s *EGMOSource) PeopleURL(event int) string {
	return fmt.Sprintf("%s/egmo%d/people/people.csv", s.baseURL, event)
}

// Load implements ports.ResultsSource.
func (s *EGMOSource) Load(ctx context.Context, event int) (domain.Instance, error) {
	dir := fmt.Sprintf("egmo-%d/", event)
	countries, err := s.fetcher.Fetch(ctx, s.Name(), dir+egmoCountriesFile, s.CountriesURL(event))
	if err != nil {
		return domain.Instance{}, fmt.Errorf("egmo %d: %w", event, err)
	}
	people, err := s.fetcher.Fetch(ctx, s.Name(), dir+egmoPeopleFile, s.PeopleURL(event))
	if err != nil {
		return domain.Instance{}, fmt.Errorf("egmo %d: %w", event, err)
	}
	return ParseEGMO(event, bytes.NewReader(countries), bytes.NewReader(people))
}

// ParseEGMO reads the country and participant CSV files of an event.
func ParseEGMO(event int, countries, people io.Reader) (domain.Instance, error) {
	countryRows, err := readCSV(countries, "Code", "Official European")
	if err != nil {
		return domain.Instance{}, fmt.Errorf("egmo %d: %s: %w", event, egmoCountriesFile, err)
	}
	official := make(map[string]bool)
	for _, c := range countryRows {
		if c["Official European"] == "Yes" {
			official[c["Code"]] = true
		}
	}

	peopleRows, err := readCSV(people, "Country Code", "Contestant Code", "Total", "Award")
	if err != nil {
		return domain.Instance{}, fmt.Errorf("egmo %d: %s: %w", event, egmoPeopleFile, err)
	}

	t := newTally(egmoAwards, event, egmoMaxTotal(event))
	for _, p := range peopleRows {
		if p["Contestant Code"] == "" || !official[p["Country Code"]] {
			continue
		}
		total, err := strconv.Atoi(strings.TrimSpace(p["Total"]))
		if err != nil {
			return domain.Instance{}, fmt.Errorf("%w: egmo %d: contestant %s: bad total %q",
				ErrMalformedResults, event, p["Contestant Code"], p["Total"])
		}
		if err := t.add(total, p["Award"]); err != nil {
			return domain.Instance{}, err
		}
	}
	return t.instance(), nil
}

// readCSV decodes a UTF-8 CSV file with a header row, with or without a
// byte order mark, into one map per record. Every column in required must
// be present in the header.
func readCSV(r io.Reader, required ...string) ([]map[string]string, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrMalformedResults)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResults, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[h] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedResults, name)
		}
	}
	cr.FieldsPerRecord = len(header)

	var rows []map[string]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedResults, err)
		}
		row := make(map[string]string, len(header))
		for name, i := range cols {
			row[name] = rec[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
