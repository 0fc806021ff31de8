// Package backtrace captures the calling goroutine's stack as a list of frames.
//
// Capture is synchronous and lock-free, safe on any goroutine, and never
// panics: when the stack cannot be walked it returns an empty Backtrace.
// Frames the runtime cannot symbolize keep their program counter and render
// as "<unknown> (0x...)".
//
//	bt := backtrace.Capture()
//	fmt.Println(bt) // 0  main.run (/src/main.go:12)
//	                // 1  main.main (/src/main.go:5)
//	                // ...
package backtrace
