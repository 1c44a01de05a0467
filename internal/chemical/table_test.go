package chemical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LookupIsCaseInsensitive(t *testing.T) {
	table := Default()

	for _, id := range []string{"ammonia", "Ammonia", "  AMMONIA "} {
		p, ok := table.Lookup(id)
		require.True(t, ok, id)
		assert.Equal(t, 17.03, p.MolecularWeight)
	}
}

func TestDefault_UnknownChemical(t *testing.T) {
	_, ok := Default().Lookup("unobtainium")
	assert.False(t, ok)
}

func TestNilTable_Lookup(t *testing.T) {
	var table *Table
	_, ok := table.Lookup("ammonia")
	assert.False(t, ok)
}

func TestDefault_EveryEntryHasPhysicalConstants(t *testing.T) {
	table := Default()
	for _, name := range table.Names() {
		p, ok := table.Lookup(name)
		require.True(t, ok)
		assert.Positive(t, p.MolecularWeight, name)
		assert.Positive(t, p.VaporPressure, name)
		assert.Positive(t, p.AEGL3, name)
		if p.AEGL2 > 0 {
			assert.LessOrEqual(t, p.AEGL2, p.AEGL3, name)
		}
		if p.AEGL1 > 0 {
			assert.LessOrEqual(t, p.AEGL1, p.AEGL2, name)
		}
	}
}

func TestProperties_Conversions(t *testing.T) {
	ammonia, _ := Default().Lookup("ammonia")

	mg := ammonia.ToMgPerM3(160)
	assert.InDelta(t, 111.44, mg, 0.01)
	assert.InDelta(t, 160, ammonia.ToPPM(mg), 1e-9)

	var unknown Properties
	assert.Zero(t, unknown.ToMgPerM3(160))
	assert.Zero(t, unknown.ToPPM(160))
}

func TestNewTable_CopiesAndNormalizes(t *testing.T) {
	src := map[string]Properties{"Test Gas": {MolecularWeight: 10}}
	table := NewTable(src)
	src["Test Gas"] = Properties{MolecularWeight: 99}

	p, ok := table.Lookup("test gas")
	require.True(t, ok)
	assert.Equal(t, 10.0, p.MolecularWeight)
}

func TestNames_Sorted(t *testing.T) {
	names := Default().Names()
	assert.Len(t, names, 12)
	assert.IsIncreasing(t, names)

	var nilTable *Table
	assert.Empty(t, nilTable.Names())
}
