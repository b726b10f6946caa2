package semaphore_test

import (
	"fmt"

	"github.com/joeycumines/go-syncscope/semaphore"
)

func ExampleSemaphore() {
	s, err := semaphore.New(1, 1)
	if err != nil {
		panic(err)
	}
	fmt.Println(s.TryAcquire())
	fmt.Println(s.TryAcquire())
	s.Release(1)
	fmt.Println(s.TryAcquire())
	//output:
	//true
	//false
	//true
}
