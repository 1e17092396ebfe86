package rbpuri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullForm(t *testing.T) {
	u, err := Parse("ipbusudp-2.0://192.168.1.1:50001/regmap.xml?timeout=5000&retries=3")
	require.NoError(t, err)
	assert.Equal(t, "ipbusudp-2.0", u.Protocol)
	assert.Equal(t, "192.168.1.1", u.Host)
	assert.Equal(t, "50001", u.Port)
	assert.Equal(t, "regmap", u.Path)
	assert.Equal(t, "xml", u.Extension)
	assert.Equal(t, []KeyValue{{"timeout", "5000"}, {"retries", "3"}}, u.Arguments)
}

func TestParse_MinimalForm(t *testing.T) {
	u, err := Parse("chtcp-1.3://localhost")
	require.NoError(t, err)
	assert.Equal(t, "chtcp-1.3", u.Protocol)
	assert.Equal(t, "localhost", u.Host)
	assert.Empty(t, u.Port)
	assert.Empty(t, u.Path)
	assert.Empty(t, u.Arguments)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse("not a uri at all")
	require.Error(t, err)
}

func TestParse_MalformedQuery(t *testing.T) {
	_, err := Parse("ipbusudp-2.0://host:1234/path?missingvalue")
	require.Error(t, err)
}

func TestURI_Arg(t *testing.T) {
	u, err := Parse("ipbustcp-1.3://host:1234/path?k=v")
	require.NoError(t, err)
	v, ok := u.Arg("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	_, ok = u.Arg("missing")
	assert.False(t, ok)
}

func TestURI_StringRoundTrip(t *testing.T) {
	raw := "ipbusudp-2.0://host:1234/path.xml?a=1&b=2"
	u, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, u.String())
}
