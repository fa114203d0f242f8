package seed

import (
	"testing"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/robobuild/db"
	"github.com/xenking/robobuild/internal/domain/device"
	"github.com/xenking/robobuild/internal/domain/part"
	"github.com/xenking/robobuild/internal/domain/product"
)

func TestCategories_Embedded(t *testing.T) {
	cats, err := Categories(db.Parts)
	require.NoError(t, err)
	require.Len(t, cats, 4)

	c, err := part.NewCatalog(cats)
	require.NoError(t, err)
	assert.Equal(t, 12, c.Len())

	p, err := c.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "RoboCore AI Processor X1", p.Name)
	assert.True(t, decimal.NewFromInt(899).Equal(p.Price))
	assert.True(t, p.InStock)
	assert.Equal(t, "processors", p.CategoryID)

	for _, id := range []int{3, 9} {
		p, err := c.Get(id)
		require.NoError(t, err)
		assert.False(t, p.InStock, "part %d should be out of stock", id)
	}
}

func TestCategories_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not an array", data: `{"id":"x"}`},
		{name: "bad price", data: `[{"id":"x","parts":[{"id":1,"price":"abc"}]}]`},
		{name: "bad id type", data: `[{"id":"x","parts":[{"id":"one"}]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Categories([]byte(tt.data))
			require.Error(t, err)
		})
	}
}

func TestCategories_StringPriceAndUnknownFields(t *testing.T) {
	cats, err := Categories([]byte(`[{"id":"x","name":"X","icon":"Cpu","parts":[{"id":1,"name":"a","price":"12.50","extra":[1,2]}]}]`))
	require.NoError(t, err)
	require.Len(t, cats[0].Parts, 1)
	assert.True(t, decimal.RequireFromString("12.5").Equal(cats[0].Parts[0].Price))
}

func TestProducts_Embedded(t *testing.T) {
	products, err := Products(db.Products)
	require.NoError(t, err)
	require.Len(t, products, 6)

	guardian := products[0]
	assert.Equal(t, "Guardian Security Bot X1", guardian.Name)
	assert.True(t, guardian.OriginalPrice.Valid)
	assert.True(t, decimal.NewFromInt(3499).Equal(guardian.OriginalPrice.Decimal))
	assert.Len(t, guardian.Features, 6)
	assert.Equal(t, product.Spec{Name: "Height", Value: "1.2m"}, guardian.Specs[0])

	assert.False(t, products[1].OriginalPrice.Valid)
	assert.Len(t, product.FilterByCategory(products, "security"), 2)
}

func TestProducts_NullOriginalPrice(t *testing.T) {
	products, err := Products([]byte(`[{"id":9,"price":10,"originalPrice":null}]`))
	require.NoError(t, err)
	assert.False(t, products[0].OriginalPrice.Valid)
}

func TestDevices_Embedded(t *testing.T) {
	devices, err := Devices(db.Devices)
	require.NoError(t, err)
	require.Len(t, devices, 3)
	assert.Equal(t, device.Stats{Total: 3, Active: 1, Online: 2, Maintenance: 1}, device.Summarize(devices))
	assert.Equal(t, "Perimeter patrol active", devices[0].Task)
}

func TestSpecsRoundTrip(t *testing.T) {
	specs := []product.Spec{{Name: "Range", Value: "500m"}, {Name: "Speed", Value: "2.5 m/s"}}

	var e jx.Encoder
	EncodeSpecs(&e, specs)

	got, err := DecodeSpecs(jx.DecodeBytes(e.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, specs, got)
}
