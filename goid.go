package chromez

import (
	"bytes"
	"runtime"
	"strconv"
)

var goroutinePrefix = []byte("goroutine ")

// goroutineID extracts the calling goroutine's id from its stack header.
// Returns 0 if the header cannot be parsed.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// "goroutine 123 [running]:\n..."
	b := buf[:n]
	if !bytes.HasPrefix(b, goroutinePrefix) {
		return 0
	}
	b = b[len(goroutinePrefix):]
	end := bytes.IndexByte(b, ' ')
	if end < 0 {
		return 0
	}

	gid, err := strconv.ParseUint(string(b[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return gid
}
