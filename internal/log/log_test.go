package log

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetLevel(t *testing.T) {
	prev := logger.GetLevel()
	t.Cleanup(func() { logger.SetLevel(prev) })

	assert.NoError(t, SetLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	assert.NoError(t, SetLevel(""))
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	assert.Error(t, SetLevel("verbose"))
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}
