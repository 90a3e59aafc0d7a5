// Package resilience provides the outbound call discipline for upstream requests.
//
// The patterns compose into a single Executor that every upstream attempt
// passes through:
//
//   - Rate Limiter: a process-wide minimum-interval gate. No two attempts
//     start closer together than the configured interval.
//
//   - Retry: retries transient failures with exponential backoff, jitter and
//     server-provided retry hints. Non-retryable failures return immediately.
//
//   - Timeout: bounds each attempt independently of the retry budget.
//
// # Usage
//
//	rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{
//	    MinInterval: 67 * time.Millisecond, // ~15 requests per second
//	})
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxRetries: 3,
//	    BaseDelay:  500 * time.Millisecond,
//	    MaxDelay:   30 * time.Second,
//	    Jitter:     true,
//	})
//
//	executor := resilience.NewExecutor(
//	    resilience.WithRateLimiter(rl),
//	    resilience.WithRetry(retry),
//	    resilience.WithTimeout(30*time.Second),
//	)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    resp, err := doRequest(ctx)
//	    if err != nil {
//	        return resilience.Retryable(err, 0)
//	    }
//	    ...
//	})
//
// Retry classification is carried by errors: wrap transient failures with
// Retryable (optionally with a retry-after hint); any other error is final.
package resilience
