// Package query turns list-endpoint query parameters into a page of students:
// filter, then sort, then paginate. Everything here is pure; the caller hands
// in a snapshot of the store.
package query

import (
	"cmp"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/aanand-mishra/students-crud/internal/types"
)

// Supported values of the sort parameter.
const (
	SortGPA  = "gpa"
	SortName = "name"
)

// comparators maps each sort key to its ordering. Unknown keys keep store order.
var comparators = map[string]func(a, b types.Student) int{
	// highest gpa first
	SortGPA: func(a, b types.Student) int { return cmp.Compare(b.GPA, a.GPA) },
	SortName: func(a, b types.Student) int {
		return strings.Compare(a.Name, b.Name)
	},
}

// Params is the parsed form of ?major=&name=&sort=&page=&limit=.
//
// Empty Major/Name mean "no filter". Page and Limit are 0 when not given
// (or not a positive integer); Apply substitutes the defaults.
type Params struct {
	Major string
	Name  string
	Sort  string
	Page  int
	Limit int
}

// FromValues reads Params from a request's query string.
func FromValues(v url.Values) Params {
	return Params{
		Major: v.Get("major"),
		Name:  v.Get("name"),
		Sort:  v.Get("sort"),
		Page:  positiveInt(v.Get("page")),
		Limit: positiveInt(v.Get("limit")),
	}
}

func positiveInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0
	}
	return n
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Apply filters, sorts and paginates students. It never modifies the input.
//
// Page defaults to 1 and Limit to the size of the filtered set. A page past
// the end yields empty Data, not an error. Total is always the filtered
// count before pagination.
func Apply(students []types.Student, p Params) types.StudentPage {
	filtered := make([]types.Student, 0, len(students))
	for _, s := range students {
		if p.Major != "" && !containsFold(s.Major, p.Major) {
			continue
		}
		if p.Name != "" && !containsFold(s.Name, p.Name) {
			continue
		}
		filtered = append(filtered, s)
	}

	if less, ok := comparators[p.Sort]; ok {
		slices.SortStableFunc(filtered, less)
	}

	total := len(filtered)

	page := p.Page
	if page == 0 {
		page = 1
	}
	limit := p.Limit
	if limit == 0 {
		limit = total
	}

	data := make([]types.Student, 0)
	// Compare page numbers rather than offsets so huge values cannot overflow.
	if limit > 0 && page-1 < pageCount(total, limit) {
		start := (page - 1) * limit
		end := min(start+limit, total)
		data = append(data, filtered[start:end]...)
	}

	return types.StudentPage{
		Total: total,
		Page:  page,
		Limit: limit,
		Data:  data,
	}
}

func pageCount(total, limit int) int {
	n := total / limit
	if total%limit != 0 {
		n++
	}
	return n
}
