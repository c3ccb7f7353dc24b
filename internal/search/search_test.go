package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func txn(id, desc string, cents int64, category, date string) core.Transaction {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{ID: id, Description: desc, Amount: core.Money{Cents: cents}, Category: category, Date: d}
}

func fixture() []core.Transaction {
	return []core.Transaction{
		txn("a", "Morning coffee", 350, "Food", "2024-01-09"),
		txn("b", "Bus ticket", 1200, "Transport", "2024-01-10"),
		txn("c", "Lunch with team", 1250, "Food", "2024-01-10"),
		txn("d", "Fuel refill", 4000, "Fuel", "2024-02-01"),
	}
}

func ids(records []core.Transaction) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestCompile(t *testing.T) {
	p, err := Compile("", false)
	assert.NoError(t, err)
	assert.Nil(t, p)

	p, err = Compile("   ", true)
	assert.NoError(t, err)
	assert.Nil(t, p)

	p, err = Compile("(unclosed", false)
	assert.Nil(t, p)
	var perr *PatternError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, core.ErrPattern)
	assert.Equal(t, "(unclosed", perr.Pattern)

	p, err = Compile("coffee", true)
	require.NoError(t, err)
	assert.True(t, p.MatchString("coffee"))
	assert.False(t, p.MatchString("COFFEE"))

	p, err = Compile("coffee", false)
	require.NoError(t, err)
	assert.True(t, p.MatchString("COFFEE"))

	// ECMAScript digits are ASCII only.
	for _, caseSensitive := range []bool{true, false} {
		p, err = Compile(`^\d+$`, caseSensitive)
		require.NoError(t, err)
		assert.True(t, p.MatchString("42"))
		assert.False(t, p.MatchString("٤٢"))
	}
}

func TestHighlight(t *testing.T) {
	p, err := Compile("o", false)
	require.NoError(t, err)
	assert.Equal(t, "c<mark>o</mark>c<mark>O</mark>a", Highlight("cocOa", p))

	assert.Equal(t, "plain <b>", Highlight("plain <b>", nil))

	p, _ = Compile("tea", false)
	assert.Equal(t, "&lt;<mark>Tea</mark>&gt; &amp; cake", Highlight("<Tea> & cake", p))

	p, _ = Compile("x*", false)
	assert.Equal(t, "a<mark>xx</mark>b", Highlight("axxb", p))

	p, _ = Compile("é", false)
	assert.Equal(t, "caf<mark>é</mark> crème", Highlight("café crème", p))
}

func TestRecords(t *testing.T) {
	recs := fixture()
	assert.Equal(t, []string{"a"}, ids(Records(recs, "COFFEE")))
	assert.Equal(t, []string{"a", "c"}, ids(Records(recs, "^food$")))
	assert.Equal(t, []string{"c"}, ids(Records(recs, `^12\.5$`)))
	assert.Equal(t, []string{"b", "c"}, ids(Records(recs, `^12(\.5)?$`)))
	assert.Equal(t, recs, Records(recs, ""))
	assert.Equal(t, recs, Records(recs, "[broken"))
}

func TestApply(t *testing.T) {
	recs := fixture()
	assert.Equal(t, recs, Apply(recs, Filters{}))

	amount := core.Money{Cents: 1250}
	cases := []struct {
		name string
		f    Filters
		want []string
	}{
		{"description substring", Filters{Description: "LUNCH"}, []string{"c"}},
		{"from inclusive", Filters{From: core.NewDate(2024, 1, 10)}, []string{"b", "c", "d"}},
		{"to inclusive", Filters{To: core.NewDate(2024, 1, 10)}, []string{"a", "b", "c"}},
		{"exact amount", Filters{Amount: &amount}, []string{"c"}},
		{"exact category", Filters{Category: "Food"}, []string{"a", "c"}},
		{"category is case sensitive", Filters{Category: "food"}, []string{}},
		{"conjunction", Filters{Category: "Food", From: core.NewDate(2024, 1, 10)}, []string{"c"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(Apply(recs, tc.f)))
		})
	}
}

func TestParseFilters(t *testing.T) {
	f, err := ParseFilters("", "", "", "", "")
	require.NoError(t, err)
	assert.True(t, f.IsEmpty())

	f, err = ParseFilters(" tea ", "2024-01-01", "2024-01-31", "12.5", "Food")
	require.NoError(t, err)
	assert.Equal(t, "tea", f.Description)
	assert.Equal(t, int64(1250), f.Amount.Cents)
	assert.Equal(t, core.NewDate(2024, 1, 31), f.To)

	_, err = ParseFilters("", "2024-02-30", "", "", "")
	assert.ErrorIs(t, err, core.ErrInvalidDate)
	_, err = ParseFilters("", "", "", "1.234", "")
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestSortByDateDesc(t *testing.T) {
	recs := fixture()
	sorted := SortByDateDesc(recs)
	assert.Equal(t, []string{"d", "b", "c", "a"}, ids(sorted))
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(recs), "input must not be reordered")
}
