package timeutil

import "time"

// NowUnix returns the current time in unix seconds, the storage format of
// every timestamp column.
func NowUnix() int64 {
	return time.Now().Unix()
}
