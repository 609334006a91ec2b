package shared

import "runtime"

// GoroutineID returns the current goroutine's ID, parsed from the header of
// runtime.Stack ("goroutine N [...]"). It identifies lock owners and managed
// worker goroutines; it is not a stable handle across process restarts.
func GoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
