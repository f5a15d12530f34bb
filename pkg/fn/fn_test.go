package fn

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"
)

// --- Result ---

func TestOkAndErr(t *testing.T) {
	r := Ok(42)
	if !r.IsOk() || r.IsErr() {
		t.Fatal("Ok should be ok")
	}
	v, err := r.Unwrap()
	if v != 42 || err != nil {
		t.Fatal("wrong unwrap")
	}

	e := Err[int](errors.New("fail"))
	if e.IsOk() || !e.IsErr() {
		t.Fatal("Err should be err")
	}
	if e.Error() == nil {
		t.Fatal("Error should expose the error")
	}
}

func TestErrf(t *testing.T) {
	r := Errf[string]("code %d", 404)
	_, err := r.Unwrap()
	if err == nil || err.Error() != "code 404" {
		t.Fatal("Errf wrong message")
	}
}

func TestMustPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Must should panic on Err")
		}
	}()
	Err[int](errors.New("boom")).Must()
}

func TestUnwrapOr(t *testing.T) {
	if Ok(1).UnwrapOr(9) != 1 {
		t.Fatal("should return value")
	}
	if Err[int](errors.New("x")).UnwrapOr(9) != 9 {
		t.Fatal("should return fallback")
	}
}

func TestMapAndThen(t *testing.T) {
	r := Ok(2).Map(func(v int) int { return v * 3 }).AndThen(func(v int) Result[int] {
		return Ok(v + 1)
	})
	if r.Must() != 7 {
		t.Fatal("chain failed")
	}
	e := Err[int](errors.New("x")).Map(func(v int) int { return v * 3 })
	if e.IsOk() {
		t.Fatal("Map on Err should stay Err")
	}
}

func TestMapResult(t *testing.T) {
	r := MapResult(Ok(5), strconv.Itoa)
	if r.Must() != "5" {
		t.Fatal("MapResult failed")
	}
}

func TestFromPair(t *testing.T) {
	if FromPair(1, nil).IsErr() {
		t.Fatal("nil error should be Ok")
	}
	if FromPair(1, errors.New("x")).IsOk() {
		t.Fatal("non-nil error should be Err")
	}
}

func TestCollect(t *testing.T) {
	ok := Collect([]Result[int]{Ok(1), Ok(2)})
	vals := ok.Must()
	if len(vals) != 2 || vals[0] != 1 || vals[1] != 2 {
		t.Fatal("Collect wrong values")
	}
	bad := Collect([]Result[int]{Ok(1), Err[int](errors.New("x"))})
	if bad.IsOk() {
		t.Fatal("Collect should fail on any Err")
	}
}

func TestPartition(t *testing.T) {
	vals, errs := Partition([]Result[int]{Ok(1), Err[int](errors.New("a")), Ok(3)})
	if len(vals) != 2 || vals[0] != 1 || vals[1] != 3 {
		t.Fatal("Partition wrong values")
	}
	if len(errs) != 1 {
		t.Fatal("Partition wrong errors")
	}
}

// --- Slices ---

func TestMapFilter(t *testing.T) {
	doubled := Map([]int{1, 2, 3}, func(v int) int { return v * 2 })
	if doubled[2] != 6 {
		t.Fatal("Map failed")
	}
	even := Filter([]int{1, 2, 3, 4}, func(v int) bool { return v%2 == 0 })
	if len(even) != 2 {
		t.Fatal("Filter failed")
	}
}

func TestFilterMap(t *testing.T) {
	out := FilterMap([]string{"1", "x", "3"}, func(s string) (int, bool) {
		n, err := strconv.Atoi(s)
		return n, err == nil
	})
	if len(out) != 2 || out[1] != 3 {
		t.Fatal("FilterMap failed")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate([]int{1, 2, 3}, 2); len(got) != 2 {
		t.Fatal("Truncate should cap length")
	}
	if got := Truncate([]int{1, 2}, 5); len(got) != 2 {
		t.Fatal("Truncate should be a no-op when n exceeds length")
	}
}

func TestUniqueBy(t *testing.T) {
	type rec struct{ url string }
	out := UniqueBy([]rec{{"a"}, {"b"}, {"a"}}, func(r rec) string { return r.url })
	if len(out) != 2 || out[0].url != "a" || out[1].url != "b" {
		t.Fatal("UniqueBy should keep first occurrence")
	}
}

func TestFlatMap(t *testing.T) {
	out := FlatMap([][]int{{1, 2}, {3}}, func(v []int) []int { return v })
	if len(out) != 3 {
		t.Fatal("FlatMap failed")
	}
}

// --- Retry ---

func noSleep(recorded *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*recorded = append(*recorded, d)
		return nil
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	var sleeps []time.Duration
	opts := RetryOpts{
		MaxAttempts: 4,
		BaseDelay:   time.Second,
		Multiplier:  2.0,
		MaxDelay:    time.Minute,
		Strategy:    BackoffExponential,
		Sleep:       noSleep(&sleeps),
	}

	calls := 0
	r := Retry(context.Background(), opts, func(_ context.Context, attempt int) Result[string] {
		calls++
		if attempt < 2 {
			return Errf[string]("attempt %d failed", attempt)
		}
		return Ok("done")
	})

	if r.Must() != "done" {
		t.Fatal("expected success")
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if len(sleeps) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %d", len(sleeps))
	}
	for i := 1; i < len(sleeps); i++ {
		if sleeps[i] < sleeps[i-1] {
			t.Fatalf("delays should be non-decreasing: %v", sleeps)
		}
	}
}

func TestRetryExhaustionReturnsLastError(t *testing.T) {
	var sleeps []time.Duration
	opts := RetryOpts{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2, Strategy: BackoffExponential, Sleep: noSleep(&sleeps)}

	calls := 0
	r := Retry(context.Background(), opts, func(_ context.Context, attempt int) Result[int] {
		calls++
		return Errf[int]("err-%d", attempt)
	})

	if calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", calls)
	}
	if _, err := r.Unwrap(); err == nil || err.Error() != "err-2" {
		t.Fatalf("expected last error, got %v", err)
	}
}

func TestRetryDelayExponential(t *testing.T) {
	opts := RetryOpts{BaseDelay: time.Second, Multiplier: 2.0, MaxDelay: 10 * time.Second, Strategy: BackoffExponential}
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 10 * time.Second}, // capped
	}
	for _, tc := range cases {
		if got := opts.Delay(tc.attempt); got != tc.want {
			t.Fatalf("attempt %d: want %v, got %v", tc.attempt, tc.want, got)
		}
	}
}

func TestRetryDelayLinear(t *testing.T) {
	opts := RetryOpts{BaseDelay: time.Second, Multiplier: 1.5, MaxDelay: 10 * time.Second, Strategy: BackoffLinear}
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2500 * time.Millisecond},
		{2, 4 * time.Second},
	}
	for _, tc := range cases {
		if got := opts.Delay(tc.attempt); got != tc.want {
			t.Fatalf("attempt %d: want %v, got %v", tc.attempt, tc.want, got)
		}
	}
}

func TestRetryContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	opts := RetryOpts{MaxAttempts: 5, BaseDelay: time.Millisecond, Multiplier: 2, Strategy: BackoffExponential}

	calls := 0
	r := Retry(ctx, opts, func(_ context.Context, _ int) Result[int] {
		calls++
		cancel()
		return Errf[int]("fail")
	})

	if calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", calls)
	}
	if _, err := r.Unwrap(); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// --- Parallel ---

func TestParMapResultOrder(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	results := ParMapResult(items, 2, func(v int) Result[int] {
		return Ok(v * 10)
	})
	for i, r := range results {
		if r.Must() != items[i]*10 {
			t.Fatal("order not preserved")
		}
	}
}

func TestParMapResultErrorsIsolated(t *testing.T) {
	results := ParMapResult([]int{1, 2, 3}, 0, func(v int) Result[int] {
		if v == 2 {
			return Errf[int]("bad")
		}
		return Ok(v)
	})
	vals, errs := Partition(results)
	if len(vals) != 2 || len(errs) != 1 {
		t.Fatal("one failure should not affect siblings")
	}
}

// --- Stages ---

func TestThenShortCircuits(t *testing.T) {
	first := MapStage(func(v int) int { return v + 1 })
	second := Stage[int, string](func(_ context.Context, v int) Result[string] {
		return Ok(strconv.Itoa(v))
	})
	out := Then(first, second)(context.Background(), 1)
	if out.Must() != "2" {
		t.Fatal("composition failed")
	}

	failing := Stage[int, int](func(_ context.Context, _ int) Result[int] {
		return Errf[int]("nope")
	})
	called := false
	after := Stage[int, string](func(_ context.Context, v int) Result[string] {
		called = true
		return Ok("x")
	})
	if Then(failing, after)(context.Background(), 1).IsOk() || called {
		t.Fatal("second stage must not run after failure")
	}
}

func TestTracedStagePassesThrough(t *testing.T) {
	stage := TracedStage("test", MapStage(func(v int) int { return v * 2 }))
	if stage(context.Background(), 21).Must() != 42 {
		t.Fatal("traced stage changed the value")
	}
}
