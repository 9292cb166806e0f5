package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func latin1(t *testing.T, s string) *bytes.Reader {
	t.Helper()
	raw, err := charmap.ISO8859_1.NewEncoder().String(s)
	require.NoError(t, err)
	return bytes.NewReader([]byte(raw))
}

func TestParseExport_ISO88591(t *testing.T) {
	csv := strings.Join([]string{
		"# exporte POS",
		"sede;BOD;bod;Bodega Central;warehouse",
		"sede;L1;cen;Tienda Peñalisa;store",
		"stock;L1;camisa;M;12;5",
		"stock;L1;jean;32;0;",
		"caja;box-1;BOD;camisa;M;Caja D'Oro;40",
	}, "\n")

	got, err := parseExport(latin1(t, csv))
	require.NoError(t, err)
	require.Len(t, got.locations, 2)
	assert.Equal(t, "Tienda Peñalisa", got.locations[1].name)
	require.Len(t, got.stock, 2)
	require.NotNil(t, got.stock[0].minimum)
	assert.Equal(t, int64(5), *got.stock[0].minimum)
	assert.Nil(t, got.stock[1].minimum)
	require.Len(t, got.boxes, 1)
	assert.Equal(t, int64(40), got.boxes[0].quantity)

	var out bytes.Buffer
	require.NoError(t, writeSQL(&out, got))
	sql := out.String()
	assert.Contains(t, sql, "'Tienda Peñalisa'")
	assert.Contains(t, sql, "'Caja D''Oro'")
	assert.Contains(t, sql, "VALUES ('L1', 'jean', '32', 0, NULL)")
	assert.Equal(t, 5, strings.Count(sql, "ON CONFLICT"))
}

func TestParseExport_Errores(t *testing.T) {
	cases := map[string]string{
		"tipo desconocido":  "venta;1;2",
		"cantidad negativa": "stock;L1;camisa;M;-3",
		"sede incompleta":   "sede;L1;cen",
		"tipo de sede":      "sede;L1;cen;Centro;kiosko",
	}
	for name, row := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseExport(latin1(t, row))
			assert.Error(t, err)
		})
	}
}
