package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNowUnix(t *testing.T) {
	before := time.Now().Unix()
	got := NowUnix()
	after := time.Now().Unix()
	require.GreaterOrEqual(t, got, before)
	require.LessOrEqual(t, got, after)
}
