package testutil_test

import (
	"testing"

	"github.com/dom/socialnet/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewTestServer_SilencesLogging(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	testutil.NewTestServer(t)

	assert.Equal(t, zerolog.Disabled, zerolog.GlobalLevel())
}
