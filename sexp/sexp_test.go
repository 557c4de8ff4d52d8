package sexp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadAtoms(t *testing.T) {
	v, err := Read("(73)")
	require.NoError(t, err)
	require.True(t, v.IsList())
	require.Len(t, v.Items, 1)
	require.Equal(t, AtomNumber, v.Items[0].Kind)
	require.Equal(t, int64(73), v.Items[0].Number)
}

func TestReadNestedLists(t *testing.T) {
	v, err := Read("((fun (fact n) (if (< n 2) 1 (* n (fact (sub1 n))))) (fact 7))")
	require.NoError(t, err)
	require.True(t, v.IsList())
	require.Len(t, v.Items, 2)

	def := v.Items[0]
	require.True(t, def.IsList())
	require.True(t, def.Items[0].IsSymbol("fun"))
}

func TestReadRejectsUnterminatedList(t *testing.T) {
	_, err := Read("(+ 1 2")
	require.Error(t, err)
}

func TestReadRejectsUnexpectedCloseParen(t *testing.T) {
	_, err := Read("(+ 1 2))")
	require.Error(t, err)
}

func TestReadRejectsTrailingContent(t *testing.T) {
	_, err := Read("(1) (2)")
	require.Error(t, err)
}
