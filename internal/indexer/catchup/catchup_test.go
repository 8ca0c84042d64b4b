package catchup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldProcessNeverSyncedAlwaysProcesses(t *testing.T) {
	assert.True(t, shouldProcess(0, 0))
	assert.True(t, shouldProcess(0, 100))
}

func TestShouldProcessSkipsWhenCaughtUp(t *testing.T) {
	assert.False(t, shouldProcess(100, 100))
}

func TestShouldProcessAdvancesWhenBehind(t *testing.T) {
	assert.True(t, shouldProcess(99, 100))
}
