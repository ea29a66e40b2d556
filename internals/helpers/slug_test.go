package helper

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "el-tunel-1948", Slugify("  El Túnel (1948) ", 0))
	assert.Equal(t, "cien-anos-de-soledad", Slugify("Cien años de soledad", 0))
	assert.Equal(t, "libro", Slugify("¿¡!?", 0))
	assert.Equal(t, "abc", Slugify("abc-def", 4))
}

func TestTrimForSuffix(t *testing.T) {
	assert.Equal(t, "abcd", trimForSuffix("abcdef", "-2", 6))
	assert.Equal(t, "x", trimForSuffix("abc", "-100", 3))
}

func TestResolvePaging(t *testing.T) {
	var got Paging
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		got = ResolvePaging(c, 20, 50)
		return c.SendStatus(fiber.StatusOK)
	})

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/?page=3&per_page=500", nil))
	require.NoError(t, err)
	assert.Equal(t, Paging{Page: 3, PerPage: 50, Offset: 100, Limit: 50}, got)

	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/?page=-1&limit=5", nil))
	require.NoError(t, err)
	assert.Equal(t, Paging{Page: 1, PerPage: 5, Offset: 0, Limit: 5}, got)
}

func TestBuildPagination(t *testing.T) {
	p := BuildPagination(45, Paging{Page: 2, PerPage: 20}, 20)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.Equal(t, 20, p.Count)

	empty := BuildPagination(0, Paging{Page: 1, PerPage: 20}, 0)
	assert.Equal(t, 1, empty.TotalPages)
	assert.False(t, empty.HasNext)
}
