package dashboard

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/spendviz/internal/report"
	"github.com/MrJamesThe3rd/spendviz/internal/spend"
)

// filterKeys are the query parameters that narrow the dataset.
var filterKeys = []string{"account", "product", "price_book", "from", "to"}

func parseCriteria(q url.Values) (spend.Criteria, error) {
	c := spend.Criteria{
		Accounts:   values(q, "account"),
		Products:   values(q, "product"),
		PriceBooks: values(q, "price_book"),
	}

	if s := strings.TrimSpace(q.Get("from")); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return c, fmt.Errorf("invalid from date %q", s)
		}

		c.From = new(t)
	}

	if s := strings.TrimSpace(q.Get("to")); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return c, fmt.Errorf("invalid to date %q", s)
		}

		c.To = new(t)
	}

	if c.From != nil && c.To != nil && c.To.Before(*c.From) {
		return c, fmt.Errorf("to date %s is before from date %s", c.To.Format(time.DateOnly), c.From.Format(time.DateOnly))
	}

	return c, nil
}

func values(q url.Values, key string) []string {
	var out []string

	for _, v := range q[key] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}

// parseYear reads the year parameter, defaulting to the latest year in ds
// and to the current year when ds has no dated records.
func parseYear(q url.Values, ds *spend.Dataset) (int, error) {
	s := strings.TrimSpace(q.Get("year"))
	if s == "" {
		if years := ds.Years(); len(years) > 0 {
			return years[len(years)-1], nil
		}

		return time.Now().Year(), nil
	}

	year, err := strconv.Atoi(s)
	if err != nil || year < 1 || year > 9999 {
		return 0, fmt.Errorf("invalid year %q", s)
	}

	return year, nil
}

// accountKeys names the query parameter holding the account of each report
// that accepts one.
var accountKeys = map[report.Kind]string{
	report.KindByAccount:        "view_account",
	report.KindMonthlyByProduct: "product_account",
	report.KindMonthOverMonth:   "chart_account",
}

func reportParams(q url.Values, kind report.Kind, year int) report.Params {
	p := report.Params{Year: year}
	if key, ok := accountKeys[kind]; ok {
		p.Account = strings.TrimSpace(q.Get(key))
	}

	return p
}

// filterQuery keeps only the filter parameters of q.
func filterQuery(q url.Values) url.Values {
	out := url.Values{}

	for _, k := range filterKeys {
		if v := values(q, k); len(v) > 0 {
			out[k] = v
		}
	}

	return out
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}

	return path + "?" + q.Encode()
}

// with returns a copy of q with key set to value, or removed when value is
// empty.
func with(q url.Values, key, value string) url.Values {
	out := url.Values{}
	for k, v := range q {
		out[k] = slices.Clone(v)
	}

	if value == "" {
		out.Del(key)
	} else {
		out.Set(key, value)
	}

	return out
}
