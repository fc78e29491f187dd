package limiter_test

import (
	"context"
	"fmt"
	"time"

	"github.com/shahradelahi/throttle/limiter"
)

func ExampleNew() {
	lim, err := limiter.New(
		limiter.WithLimit(2),
		limiter.WithInterval(100*time.Millisecond),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer lim.Close(nil)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		if err := lim.Wait(ctx); err != nil {
			fmt.Println("error:", err)
			return
		}
	}

	fmt.Println("four calls admitted")
	// Output: four calls admitted
}

func ExampleLimiter_Do() {
	lim, err := limiter.New(
		limiter.WithLimit(10),
		limiter.WithInterval(time.Second),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer lim.Close(nil)

	err = lim.Do(context.Background(), func(ctx context.Context) error {
		fmt.Println("work executed")
		return nil
	})
	if err != nil {
		fmt.Println("error:", err)
	}
	// Output: work executed
}
