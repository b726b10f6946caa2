package latch_test

import (
	"fmt"
	"sync/atomic"

	"github.com/joeycumines/go-syncscope/latch"
)

func ExampleLatch() {
	const workers = 3
	l, err := latch.New(workers)
	if err != nil {
		panic(err)
	}
	var sum atomic.Int64
	for i := 1; i <= workers; i++ {
		go func() {
			sum.Add(int64(i))
			l.CountDown(1)
		}()
	}
	l.Wait()
	fmt.Println(sum.Load())
	//output:
	//6
}
