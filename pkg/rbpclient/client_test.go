package rbpclient

import (
	"context"
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ast0815/ipbus-software/internal/addrtree"
	"github.com/ast0815/ipbus-software/internal/rbpheader"
	"github.com/ast0815/ipbus-software/internal/rbptypes"
	"github.com/ast0815/ipbus-software/internal/xmlnode"
	"github.com/ast0815/ipbus-software/pkg/clientfactory"
	"github.com/ast0815/ipbus-software/pkg/rbptransport"
	"github.com/ast0815/ipbus-software/pkg/rbpuri"
)

type fakeTransport struct {
	sent  [][]uint32
	reply []uint32
}

func (f *fakeTransport) Send(_ context.Context, words []uint32) error {
	f.sent = append(f.sent, words)
	return nil
}
func (f *fakeTransport) Receive(context.Context) ([]uint32, error) { return f.reply, nil }
func (f *fakeTransport) Close() error                               { return nil }

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func buildTestTree(t *testing.T) *addrtree.Tree {
	doc := xmlnode.Node{
		XMLName: xml.Name{Local: "node"},
		Children: []xmlnode.Node{
			{
				XMLName:  xml.Name{Local: "node"},
				RawAttrs: []xml.Attr{attr("id", "reg"), attr("address", "0x10"), attr("permission", "rw")},
			},
		},
	}
	b := addrtree.NewBuilder(nil, nil, addrtree.Policy{})
	tree, err := b.Build(doc)
	require.NoError(t, err)
	return tree
}

func TestClient_ReadResolvesFromReply(t *testing.T) {
	tree := buildTestTree(t)
	ft := &fakeTransport{}

	factory := clientfactory.New()
	require.NoError(t, factory.Register("test-2.0", func(rbpuri.URI, time.Duration) (rbptransport.Transport, rbptypes.Version, error) {
		return ft, rbptypes.Version{Major: 2, Minor: 0}, nil
	}))

	c, err := New("test-2.0://device", tree, factory)
	require.NoError(t, err)

	codec := rbpheader.NewCodec(2, 0)
	replyTxHdr := codec.CalculateHeader(rbptypes.Read, 1, 0)
	pktHdr, err := codec.CalculatePacketHeader(rbptypes.Control, 1)
	require.NoError(t, err)
	ft.reply = []uint32{pktHdr, replyTxHdr, 0xCAFEBABE}

	v, err := c.Read(context.Background(), "reg")
	require.NoError(t, err)
	assert.Equal(t, uint32(0xCAFEBABE), v)
}

func TestClient_WritePermissionEnforced(t *testing.T) {
	doc := xmlnode.Node{
		XMLName: xml.Name{Local: "node"},
		Children: []xmlnode.Node{
			{
				XMLName:  xml.Name{Local: "node"},
				RawAttrs: []xml.Attr{attr("id", "ro"), attr("address", "0x1"), attr("permission", "r")},
			},
		},
	}
	b := addrtree.NewBuilder(nil, nil, addrtree.Policy{})
	tree, err := b.Build(doc)
	require.NoError(t, err)

	ft := &fakeTransport{}
	factory := clientfactory.New()
	require.NoError(t, factory.Register("test-1.3", func(rbpuri.URI, time.Duration) (rbptransport.Transport, rbptypes.Version, error) {
		return ft, rbptypes.Version{Major: 1, Minor: 3}, nil
	}))
	c, err := New("test-1.3://device", tree, factory)
	require.NoError(t, err)

	err = c.Write(context.Background(), "ro", 1)
	require.Error(t, err)
}
