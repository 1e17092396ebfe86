package clientfactory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ast0815/ipbus-software/internal/rbptypes"
	"github.com/ast0815/ipbus-software/pkg/rbptransport"
	"github.com/ast0815/ipbus-software/pkg/rbpuri"
)

func TestRegistry_DuplicateRejected(t *testing.T) {
	r := New()
	noop := func(rbpuri.URI, time.Duration) (rbptransport.Transport, rbptypes.Version, error) {
		return nil, rbptypes.Version{}, nil
	}
	require.NoError(t, r.Register("test-1.0", noop))
	require.Error(t, r.Register("test-1.0", noop))
}

func TestRegistry_UnknownProtocol(t *testing.T) {
	r := New()
	_, _, err := r.Dial("nonsense://host", time.Second)
	require.ErrorIs(t, err, rbptypes.ErrUnknownProtocol)
}

func TestNewDefault_ListsExpectedTags(t *testing.T) {
	r := NewDefault()
	tags := r.List()
	assert.Contains(t, tags, "ipbusudp-1.3")
	assert.Contains(t, tags, "ipbusudp-2.0")
	assert.Contains(t, tags, "ipbustcp-1.3")
	assert.Contains(t, tags, "chtcp-1.3")
}
