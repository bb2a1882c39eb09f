package syntax

import "runtime"

func defaultNumCPU() int {
	return runtime.NumCPU()
}
