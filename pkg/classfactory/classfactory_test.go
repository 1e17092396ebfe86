package classfactory

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ast0815/ipbus-software/internal/addrtree"
	"github.com/ast0815/ipbus-software/internal/rbptypes"
	"github.com/ast0815/ipbus-software/internal/xmlnode"
)

func TestRegistry_CreateKnownClass(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("Counter", func(args []addrtree.KeyValue) (xmlnode.Node, error) {
		return xmlnode.Node{
			XMLName:  xml.Name{Local: "node"},
			RawAttrs: []xml.Attr{{Name: xml.Name{Local: "mode"}, Value: "incremental"}},
		}, nil
	}))

	n, err := r.Create("Counter", []addrtree.KeyValue{{Key: "width", Value: "32"}})
	require.NoError(t, err)
	v, ok := n.Attr("mode")
	assert.True(t, ok)
	assert.Equal(t, "incremental", v)
}

func TestRegistry_UnknownClass(t *testing.T) {
	r := New()
	_, err := r.Create("Nope", nil)
	require.ErrorIs(t, err, rbptypes.ErrLabelUnknownToClassFactory)
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	r := New()
	creator := func(args []addrtree.KeyValue) (xmlnode.Node, error) { return xmlnode.Node{}, nil }
	require.NoError(t, r.Register("A", creator))
	require.Error(t, r.Register("A", creator))
}
