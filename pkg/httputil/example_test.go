package httputil_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/changetower/pkg/httputil"
)

func ExampleRetryValue() {
	attempts := 0
	opts := httputil.RetryOptions{InitialDelay: time.Millisecond}

	body, err := httputil.RetryValue(context.Background(), opts, func(context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", &httputil.RetryableError{Err: errors.New("status 502")}
		}
		return "## 1.0.0", nil
	})

	fmt.Println(body, err, attempts)
	// Output: ## 1.0.0 <nil> 3
}

func ExampleBackoff() {
	opts := httputil.RetryOptions{}
	for attempt := range 6 {
		fmt.Println(httputil.Backoff(opts, attempt))
	}
	// Output:
	// 1s
	// 2s
	// 4s
	// 8s
	// 16s
	// 30s
}
