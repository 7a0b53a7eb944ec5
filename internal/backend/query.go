package backend

import (
	"net/url"
	"strconv"
	"strings"
)

// Query builds the bracketed filter syntax the CMS expects, for example
// filters[user][id][$eq]=3 or filters[date][$between][0]=2024-01-01.
type Query struct {
	values url.Values
}

func NewQuery() *Query {
	return &Query{values: url.Values{}}
}

func (q *Query) Populate(fields ...string) *Query {
	if len(fields) > 0 {
		q.values.Set("populate", strings.Join(fields, ","))
	}
	return q
}

// Eq adds filters[path...][$eq]=value.
func (q *Query) Eq(value string, path ...string) *Query {
	q.values.Set(filterKey(path...)+"[$eq]", value)
	return q
}

func (q *Query) EqInt(value int64, path ...string) *Query {
	return q.Eq(strconv.FormatInt(value, 10), path...)
}

// Between adds an inclusive range filter on field.
func (q *Query) Between(field, from, to string) *Query {
	key := filterKey(field) + "[$between]"
	q.values.Set(key+"[0]", from)
	q.values.Set(key+"[1]", to)
	return q
}

func (q *Query) Sort(sort string) *Query {
	if sort != "" {
		q.values.Set("sort", sort)
	}
	return q
}

func (q *Query) Limit(n int) *Query {
	if n > 0 {
		q.values.Set("pagination[limit]", strconv.Itoa(n))
	}
	return q
}

func (q *Query) Encode() string {
	if q == nil {
		return ""
	}
	return q.values.Encode()
}

func (q *Query) Values() url.Values {
	return q.values
}

func filterKey(path ...string) string {
	var b strings.Builder
	b.WriteString("filters")
	for _, p := range path {
		b.WriteString("[")
		b.WriteString(p)
		b.WriteString("]")
	}
	return b.String()
}
