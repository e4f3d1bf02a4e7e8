package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"image/png"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardview-dev/cardview/internal/filter"
	"github.com/cardview-dev/cardview/internal/model"
)

func testPage(n int) filter.Page {
	txns := make([]model.Transaction, n)
	for i := range txns {
		txns[i] = model.Transaction{
			Amount:     decimal.NewFromFloat(float64(i) + 0.5),
			Currency:   "USD",
			Cardholder: fmt.Sprintf("Holder, %d", i),
			Status:     model.Statuses[i%len(model.Statuses)],
			Created:    "2024-03-01T12:00:00Z",
		}
	}
	return filter.Paginate(txns, 1)
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"csv", "pdf", "png"}, r.Formats())

	e, err := r.Get("PNG")
	require.NoError(t, err)
	assert.Equal(t, "png", e.Format())
	assert.Equal(t, "transactions.png", Filename(e))

	_, err = r.Get("xlsx")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	assert.Panics(t, func() { r.Register(&CSVExporter{}) })
}

func TestCSVExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&CSVExporter{}).Export(&buf, testPage(3)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"amount", "currency", "cardholder", "status", "created"}, records[0])
	assert.Equal(t, []string{"0.5", "USD", "Holder, 0", "Succeeded", "2024-03-01T12:00:00Z"}, records[1])
	assert.Equal(t, "Holder, 2", records[3][2])
}

func TestCSVExporter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&CSVExporter{}).Export(&buf, filter.Paginate(nil, 1)))
	assert.Equal(t, CSVHeader+"\n", buf.String())
}

func TestPNGExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PNGExporter{}).Export(&buf, testPage(10)))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	b := img.Bounds()
	assert.Equal(t, 12*pngRowH+2*pngMargin, b.Dy(), "header, ten rows and summary")
	assert.Greater(t, b.Dx(), 2*pngMargin)

	// Corner is background.
	r, g, bl, _ := img.At(0, 0).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, bl})
}

func TestPNGExporter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PNGExporter{}).Export(&buf, filter.Paginate(nil, 1)))
	_, err := png.Decode(&buf)
	require.NoError(t, err)
}

func TestPDFExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PDFExporter{}).Export(&buf, testPage(10)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Equal(t, "application/pdf", (&PDFExporter{}).ContentType())
}
