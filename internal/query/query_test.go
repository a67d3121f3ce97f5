package query

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampCorrectsOutOfRangeValues(t *testing.T) {
	cases := []struct {
		name      string
		in        Params
		wantPage  int
		wantLimit int
	}{
		{"zero values", Params{}, 1, DefaultLimit},
		{"negative page", Params{Page: -3, Limit: 20}, 1, 20},
		{"oversized limit", Params{Page: 2, Limit: 500}, 2, MaxLimit},
		{"zero limit", Params{Page: 4, Limit: 0}, 4, DefaultLimit},
		{"in range untouched", Params{Page: 7, Limit: 25}, 7, 25},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Clamp()
			assert.Equal(t, tc.wantPage, got.Page)
			assert.Equal(t, tc.wantLimit, got.Limit)
		})
	}
}

func TestOffset(t *testing.T) {
	p := Params{Page: 3, Limit: 10}
	assert.Equal(t, 20, p.Offset())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(3, 10, 25)
	assert.Equal(t, 3, p.CurrentPage)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 25, p.TotalItems)
	assert.Equal(t, 10, p.ItemsPerPage)
	assert.False(t, p.HasNextPage)
	assert.True(t, p.HasPrevPage)

	first := NewPagination(1, 10, 25)
	assert.True(t, first.HasNextPage)
	assert.False(t, first.HasPrevPage)

	empty := NewPagination(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNextPage)
	assert.False(t, empty.HasPrevPage)
}

func TestFromRequestParsesAndClamps(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/courses?page=0&limit=1000&sort=-createdAt,title&search=go&expand=teacher,%20student,,teacher", nil)

	p := FromRequest(c)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, "-createdAt,title", p.Sort)
	assert.Equal(t, "go", p.Search)
	assert.Equal(t, []string{"teacher", "student", "teacher"}, p.Expand)
}

func TestOrderBy(t *testing.T) {
	allowed := map[string]string{"createdAt": "c.created_at", "title": "c.title"}

	got := OrderBy("-createdAt,title", allowed, "c.created_at DESC", "c.id DESC")
	assert.Equal(t, " ORDER BY c.created_at DESC, c.title ASC, c.id DESC", got)

	// Unknown fields are skipped, never interpolated.
	got = OrderBy("-createdAt,price;DROP TABLE", allowed, "c.created_at DESC", "c.id DESC")
	assert.Equal(t, " ORDER BY c.created_at DESC, c.id DESC", got)

	// Nothing resolvable falls back to the default.
	got = OrderBy("bogus", allowed, "c.created_at DESC", "c.id DESC")
	assert.Equal(t, " ORDER BY c.created_at DESC, c.id DESC", got)
}

func TestBuilderConditions(t *testing.T) {
	b := NewBuilder()
	assert.Equal(t, "", b.Clause())

	b.Equals("c.category", "Math").Equals("c.approved", true)
	assert.Equal(t, " WHERE c.category = $1 AND c.approved = $2", b.Clause())
	assert.Equal(t, []interface{}{"Math", true}, b.Args())
}

func TestBuilderSearch(t *testing.T) {
	b := NewBuilder()
	b.Equals("c.level", "Beginner")
	b.Search("GoLang", "c.title", "c.description")

	assert.Equal(t, " WHERE c.level = $1 AND (LOWER(c.title) LIKE $2 OR LOWER(c.description) LIKE $2)", b.Clause())
	assert.Equal(t, []interface{}{"Beginner", "%golang%"}, b.Args())

	// Empty terms add nothing.
	empty := NewBuilder()
	empty.Search("", "c.title")
	assert.Equal(t, "", empty.Clause())
}

func TestNewExpansionsRejectsBadDescriptors(t *testing.T) {
	_, err := NewExpansions(Expansion{Name: "teacher", Join: "INNER JOIN users u ON u.id = c.teacher_id", Columns: []string{"u.name AS teacher_name"}})
	require.Error(t, err)

	_, err = NewExpansions(Expansion{Name: "teacher", Join: "LEFT JOIN users u ON u.id = c.teacher_id"})
	require.Error(t, err)

	_, err = NewExpansions(Expansion{
		Name:    "course",
		Join:    "LEFT JOIN courses c ON c.id = e.course_id",
		Columns: []string{"c.title AS course_title"},
		Nested: []Expansion{{
			Name:    "course.teacher",
			Join:    "LEFT JOIN users t ON t.id = c.teacher_id",
			Columns: []string{"t.name AS teacher_name"},
			Nested: []Expansion{{
				Name:    "too.deep",
				Join:    "LEFT JOIN x ON true",
				Columns: []string{"x.y"},
			}},
		}},
	})
	require.Error(t, err)
}

func TestExpansionsApply(t *testing.T) {
	set := MustExpansions(
		Expansion{Name: "student", Join: "LEFT JOIN users s ON s.id = e.student_id", Columns: []string{"s.name AS student_name"}},
		Expansion{
			Name:    "course",
			Join:    "LEFT JOIN courses c ON c.id = e.course_id",
			Columns: []string{"c.title AS course_title"},
			Nested: []Expansion{{
				Name:    "course.teacher",
				Join:    "LEFT JOIN users ct ON ct.id = c.teacher_id",
				Columns: []string{"ct.name AS course_teacher_name"},
			}},
		},
	)

	joins, cols := set.Apply([]string{"course", "student", "bogus", "course"})
	assert.Equal(t, []string{
		"LEFT JOIN courses c ON c.id = e.course_id",
		"LEFT JOIN users ct ON ct.id = c.teacher_id",
		"LEFT JOIN users s ON s.id = e.student_id",
	}, joins)
	assert.Equal(t, []string{"c.title AS course_title", "ct.name AS course_teacher_name", "s.name AS student_name"}, cols)

	joins, cols = set.Apply(nil)
	assert.Empty(t, joins)
	assert.Empty(t, cols)
}
