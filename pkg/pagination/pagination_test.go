package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestClampDefaultsAndCaps(t *testing.T) {
	page, limit := Clamp(0, 0)
	require.Equal(t, DefaultPage, page)
	require.Equal(t, DefaultLimit, limit)

	page, limit = Clamp(-3, 1000)
	require.Equal(t, DefaultPage, page)
	require.Equal(t, MaxLimit, limit)

	page, limit = Clamp(4, 50)
	require.Equal(t, 4, page)
	require.Equal(t, 50, limit)
}

func TestParseReadsQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=3&limit=10", nil)

	params := Parse(c)
	require.Equal(t, 3, params.Page)
	require.Equal(t, 10, params.Limit)
	require.Equal(t, 20, params.Offset)
}
