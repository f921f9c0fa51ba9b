package results

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/medalbound/internal/domain"
)

type imoRow struct {
	id    string
	total int
	award string
}

func imoXML(rows ...imoRow) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n<results>\n")
	for _, r := range rows {
		award := "<award/>"
		if r.award != "" {
			award = "<award>" + r.award + "</award>"
		}
		fmt.Fprintf(&b, "  <contestant id=%q><name>C%s</name><total>%d</total>%s</contestant>\n", r.id, r.id, r.total, award)
	}
	b.WriteString("</results>\n")
	return b.String()
}

var imoSample = []imoRow{
	{"1", 42, "Gold medal"},
	{"2", 35, "Silver medal"},
	{"3", 35, "Silver medal"},
	{"4", 20, "Bronze medal"},
	{"5", 14, "Honourable mention"},
	{"6", 3, ""},
}

func TestParseIMO(t *testing.T) {
	in, err := ParseIMO(2019, strings.NewReader(imoXML(imoSample...)))
	require.NoError(t, err)

	assert.Equal(t, "imo", in.Competition)
	assert.Equal(t, 2019, in.EventID)
	assert.Equal(t, 6, in.NumContestants)
	assert.Equal(t, 42, in.MaxTotal)
	require.Len(t, in.Stats, 43)
	assert.Equal(t, 6, in.Stats[0])
	assert.Equal(t, 5, in.Stats[4])
	assert.Equal(t, 3, in.Stats[35])
	assert.Equal(t, 1, in.Stats[42])
	assert.Equal(t, []int{1, 2, 1}, in.ActualMedals)
	assert.Equal(t, domain.Boundaries{1, 3, 4, 6}, in.ActualBoundaries())
}

func TestParseIMO_2005Exclusions(t *testing.T) {
	rows := append([]imoRow{{"8678", 30, "Silver medal"}, {"8613", 10, ""}}, imoSample...)

	in, err := ParseIMO(2005, strings.NewReader(imoXML(rows...)))
	require.NoError(t, err)
	assert.Equal(t, 6, in.NumContestants)
	assert.Equal(t, []int{1, 2, 1}, in.ActualMedals)

	in, err = ParseIMO(2006, strings.NewReader(imoXML(rows...)))
	require.NoError(t, err)
	assert.Equal(t, 8, in.NumContestants, "exclusions apply to 2005 only")
}

func TestParseIMO_LegacyEncoding(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<results><contestant id=\"1\"><name>Ren\xe9</name><total>7</total><award>Bronze medal</award></contestant></results>"

	in, err := ParseIMO(1990, strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1}, in.ActualMedals)
}

func TestParseIMO_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "unknown award with suggestion",
			doc:     imoXML(imoRow{"1", 40, "Gold Medal"}),
			wantErr: `imo 2019: unknown award: "Gold Medal" (did you mean "Gold medal"?)`,
		},
		{
			name:    "unknown award without suggestion",
			doc:     imoXML(imoRow{"1", 40, "Special prize"}),
			wantErr: `imo 2019: unknown award: "Special prize"`,
		},
		{
			name:    "total out of range",
			doc:     imoXML(imoRow{"1", 43, "Gold medal"}),
			wantErr: "total 43 outside [0, 42]",
		},
		{
			name:    "non-numeric total",
			doc:     `<results><contestant id="9"><total>n/a</total></contestant></results>`,
			wantErr: `contestant 9: bad total "n/a"`,
		},
		{
			name:    "truncated document",
			doc:     `<results><contestant id="9"><total>4`,
			wantErr: "malformed results",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseIMO(2019, strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedResults)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIMOSource_Load(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/year_individual_r.aspx", r.URL.Path)
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(imoXML(imoSample...)))
	}))
	defer srv.Close()

	f, cache := newTestFetcher(t)
	src := NewIMOSource(f, srv.URL+"/")

	in, err := src.Load(context.Background(), 2015)
	require.NoError(t, err)
	assert.Equal(t, 2015, in.EventID)
	assert.Equal(t, "year=2015&column=total&order=desc&download=XML", gotQuery)

	_, err = os.Stat(filepath.Join(cache.Root(), "imo-2015", "IMO_Individual.xml"))
	assert.NoError(t, err, "document is cached under the event directory")
}

func TestIMOSource_DefaultURL(t *testing.T) {
	src := NewIMOSource(nil, "")
	assert.Equal(t,
		"https://www.imo-official.org/year_individual_r.aspx?year=1986&column=total&order=desc&download=XML",
		src.URL(1986))
}
