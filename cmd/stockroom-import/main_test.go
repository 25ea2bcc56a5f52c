package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRows(t *testing.T) {
	in := "quantity,name,price\n" +
		"12, Trail Mix ,5.25\n" +
		"3,,1.00\n" +
		"7,\"Tea, green\",2.499\n"
	rows, err := readRows(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Trail Mix", rows[0].Name)
	assert.Equal(t, 12, rows[0].Quantity)
	assert.Equal(t, "5.25", rows[0].Price.StringFixed(2))
	assert.Equal(t, "Tea, green", rows[1].Name)
	assert.Equal(t, "2.50", rows[1].Price.StringFixed(2))
}

func TestReadRowsErrors(t *testing.T) {
	_, err := readRows(strings.NewReader("q,n,p\nmany,Rope,1\n"))
	assert.ErrorContains(t, err, "line 2: quantity")

	_, err = readRows(strings.NewReader("q,n,p\n1,Rope,free\n"))
	assert.ErrorContains(t, err, "line 2: price")

	_, err = readRows(strings.NewReader("q,n,p\n1,Rope\n"))
	assert.Error(t, err)
}
