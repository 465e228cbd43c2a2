package columns

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	assert.True(t, Matches(Timestamp, "Fecha/Hora"))
	assert.True(t, Matches(Timestamp, " TIMESTAMP "))
	assert.True(t, Matches(UV, "UV Irradiance (W/m2)"))
	assert.True(t, Matches(UV, "ERI"))
	assert.True(t, Matches(Speed, "Velocidad (m/s)"))
	assert.True(t, Matches(Direction, "Dirección"))
	assert.False(t, Matches(UV, "Temperatura"))
	assert.False(t, Matches(Speed, ""))
}

func TestCandidatesKeepColumnOrder(t *testing.T) {
	header := []string{"Fecha", "UV-B", "Temp", "UV Index "}
	got := Candidates(header, UV)
	assert.Equal(t, []Column{{Index: 1, Name: "UV-B"}, {Index: 3, Name: "UV Index"}}, got)
}

func TestResolve_FirstCandidateWins(t *testing.T) {
	header := []string{"Fecha", "UV-B", "UV-A"}
	r := Resolver{Policy: PickFirst}
	for i := 0; i < 3; i++ {
		m, err := r.Resolve(header, Timestamp, UV)
		require.NoError(t, err)
		assert.Equal(t, Column{Index: 0, Name: "Fecha"}, m[Timestamp])
		assert.Equal(t, Column{Index: 1, Name: "UV-B"}, m[UV])
	}
}

func TestResolve_ClaimedColumnsAreSkipped(t *testing.T) {
	header := []string{"Fecha", "Hora", "UV"}
	m, err := Resolver{}.Resolve(header, Date, Clock, UV)
	require.NoError(t, err)
	assert.Equal(t, 0, m[Date].Index)
	assert.Equal(t, 1, m[Clock].Index)
	assert.True(t, m.Has(UV))
	assert.False(t, m.Has(Speed))

	// "Date time" satisfies both fields; the second one has nothing left.
	_, err = Resolver{}.Resolve([]string{"Date time", "UV"}, Date, Clock)
	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, Clock, missing.Field)
}

func TestResolve_Missing(t *testing.T) {
	_, err := Resolver{}.Resolve([]string{"Fecha", "Temp"}, Timestamp, UV)
	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, UV, missing.Field)
	assert.Contains(t, err.Error(), "no UV irradiance column found")
}

func TestResolve_AskWithoutChooser(t *testing.T) {
	_, err := Resolver{Policy: Ask}.Resolve([]string{"Fecha", "UV-B", "UV-A"}, Timestamp, UV)
	var amb *AmbiguousColumnError
	require.ErrorAs(t, err, &amb)
	assert.Equal(t, UV, amb.Field)
	assert.Equal(t, []string{"UV-B", "UV-A"}, amb.Names())
}

func TestResolve_AskUsesChooser(t *testing.T) {
	var offered []Column
	r := Resolver{Policy: Ask, Chooser: ChooserFunc(func(f Field, c []Column) (Column, error) {
		offered = c
		return c[1], nil
	})}
	m, err := r.Resolve([]string{"Fecha", "UV-B", "UV-A"}, Timestamp, UV)
	require.NoError(t, err)
	assert.Len(t, offered, 2)
	assert.Equal(t, "UV-A", m[UV].Name)

	// a single candidate never reaches the chooser
	offered = nil
	_, err = r.Resolve([]string{"Fecha", "UV"}, Timestamp, UV)
	require.NoError(t, err)
	assert.Nil(t, offered)
}

func TestResolve_ChooserErrors(t *testing.T) {
	boom := errors.New("cancelled")
	r := Resolver{Policy: Ask, Chooser: ChooserFunc(func(Field, []Column) (Column, error) { return Column{}, boom })}
	_, err := r.Resolve([]string{"UV-B", "UV-A"}, UV)
	assert.ErrorIs(t, err, boom)

	r.Chooser = ChooserFunc(func(Field, []Column) (Column, error) { return Column{Index: 7, Name: "x"}, nil })
	_, err = r.Resolve([]string{"UV-B", "UV-A"}, UV)
	assert.ErrorContains(t, err, "not a candidate")
}

func TestResolve_Overrides(t *testing.T) {
	header := []string{"Fecha", "UV-B", "Sensor 2"}
	m, err := Resolver{Overrides: map[Field]string{UV: "sensor 2"}}.Resolve(header, Timestamp, UV)
	require.NoError(t, err)
	assert.Equal(t, Column{Index: 2, Name: "Sensor 2"}, m[UV])

	_, err = Resolver{Overrides: map[Field]string{UV: "Sensor 9"}}.Resolve(header, UV)
	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Sensor 9", missing.Requested)
}

func TestHeaderHint(t *testing.T) {
	hint := HeaderHint(Timestamp, Speed, Direction)
	assert.True(t, hint([]string{"Fecha", "Velocidad", "Dirección"}))
	assert.False(t, hint([]string{"Estación Quinta Normal"}))
	assert.False(t, HeaderHint()([]string{"Fecha"}))
}

func TestParsePolicyAndField(t *testing.T) {
	p, err := ParsePolicy("ASK")
	require.NoError(t, err)
	assert.Equal(t, Ask, p)
	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PickFirst, p)
	_, err = ParsePolicy("random")
	assert.Error(t, err)

	f, err := ParseField(" Speed ")
	require.NoError(t, err)
	assert.Equal(t, Speed, f)
	_, err = ParseField("rain")
	assert.Error(t, err)
}
