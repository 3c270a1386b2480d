package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadItems_OmiteEncabezado(t *testing.T) {
	in := "id,unidad,ubicacion\nRM100,kg,BODEGA-1\nRM200, und , PATIO\n"
	items, err := readItems(strings.NewReader(in), ',', false)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "RM200", items[1].ID)
	assert.Equal(t, "und", items[1].UnitOfMeasure)
	assert.Equal(t, "PATIO", items[1].Location)
	assert.True(t, items[1].CurrentQuantity.IsZero())
}

func TestReadItems_Latin1(t *testing.T) {
	// "Almacén" en ISO-8859-1: é = 0xE9
	raw := append([]byte("RM1;kg;Almac"), 0xE9, 'n', '\n')
	items, err := readItems(bytes.NewReader(raw), ';', true)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Almacén", items[0].Location)
}

func TestReadItems_Errores(t *testing.T) {
	_, err := readItems(strings.NewReader("RM1,kg\n"), ',', false)
	assert.Error(t, err, "faltan columnas")

	_, err = readItems(strings.NewReader("RM1,kg,A\nRM1,kg,B\n"), ',', false)
	assert.ErrorContains(t, err, "repetido")

	_, err = readItems(strings.NewReader(",kg,A\n"), ',', false)
	assert.Error(t, err, "id obligatorio")
}
