package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageLimit(t *testing.T) {
	assert.Equal(t, 200, pageLimit(0, 200))
	assert.Equal(t, 25, pageLimit(25, 200))
	assert.Equal(t, maxListLimit, pageLimit(100000000, 200))
	assert.Equal(t, maxListLimit, pageLimit(0, 5000))
}
