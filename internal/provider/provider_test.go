package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucketParamsSelection(t *testing.T) {
	interval, count := bucketParams(1)
	assert.Equal(t, int64(30), interval)
	assert.Equal(t, 120, count)

	interval, count = bucketParams(2)
	assert.Equal(t, int64(10), interval)
	assert.Equal(t, 60, count)

	interval, count = bucketParams(0)
	assert.Equal(t, int64(3600), interval)
	assert.Equal(t, 24, count)

	interval, count = bucketParams(99)
	assert.Equal(t, int64(3600), interval)
	assert.Equal(t, 24, count)
}
