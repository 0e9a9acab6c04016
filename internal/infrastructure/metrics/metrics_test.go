package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpledger/internal/core/entity"
	"erpledger/internal/core/types"
	"erpledger/internal/domain/reports"
)

type fakeStock struct {
	levels []reports.StockLevel
	err    error
}

func (f fakeStock) StockLevels(context.Context, entity.ItemType) ([]reports.StockLevel, error) {
	return f.levels, f.err
}

func TestMiddleware_CountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/orders/1", "/orders/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 2.0, promtest.ToFloat64(m.requests.WithLabelValues("GET", "/orders/:id", "200")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
}

func TestStockCollector(t *testing.T) {
	c := NewStockCollector(fakeStock{levels: []reports.StockLevel{
		{Ref: entity.ProductRef(1), Name: "Frame", Total: types.NewQuantity(4), Sellable: types.NewQuantity(3), Low: true},
		{Ref: entity.ComponentRef(2), Name: "Steel", Total: types.NewQuantity(30)},
	}})

	assert.Equal(t, 6, promtest.CollectAndCount(c))

	expected := `
# HELP erpledger_stock_quantity Total quantity on hand across all batches.
# TYPE erpledger_stock_quantity gauge
erpledger_stock_quantity{item_id="1",item_type="product",name="Frame"} 4
erpledger_stock_quantity{item_id="2",item_type="component",name="Steel"} 30
`
	require.NoError(t, promtest.CollectAndCompare(c, strings.NewReader(expected), "erpledger_stock_quantity"))
}

func TestStockCollector_SourceError(t *testing.T) {
	c := NewStockCollector(fakeStock{err: errors.New("down")})
	assert.Equal(t, 0, promtest.CollectAndCount(c))
}

func TestHandler_ServesRegistry(t *testing.T) {
	m := New()
	require.NoError(t, m.Register(NewStockCollector(fakeStock{})))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
