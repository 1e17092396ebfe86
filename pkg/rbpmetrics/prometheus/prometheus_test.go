package prometheus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ast0815/ipbus-software/pkg/rbpmetrics"
)

func TestNewTransactionMetrics_NilWhenDisabled(t *testing.T) {
	rbpmetrics.InitRegistry(false)
	assert.Nil(t, NewTransactionMetrics())
}

func TestNewTransactionMetrics_RecordsWithoutPanicking(t *testing.T) {
	rbpmetrics.InitRegistry(true)
	defer rbpmetrics.InitRegistry(false)

	m := NewTransactionMetrics()
	require.NotNil(t, m)

	m.RecordOp("read", "successful", 5*time.Millisecond)
	m.RecordDispatch(4)
	m.RecordWouldBlock()
}

func TestNewReliabilityMetrics_RecordsWithoutPanicking(t *testing.T) {
	rbpmetrics.InitRegistry(true)
	defer rbpmetrics.InitRegistry(false)

	m := NewReliabilityMetrics()
	require.NotNil(t, m)

	m.SetWindowOccupancy(3)
	m.RecordStatusProbe("ok")
	m.RecordResend()
	m.RecordDesynchronized()
}
