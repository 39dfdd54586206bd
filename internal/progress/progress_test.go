package progress

import (
	"testing"
	"time"
)

func TestIncrementAndFinishDoesNotPanic(t *testing.T) {
	b := New("test", 10)
	for i := 0; i < 10; i++ {
		b.Increment()
	}
	b.Finish()
}

func TestZeroTotalDoesNotDivideByZero(t *testing.T) {
	b := New("empty", 0)
	b.Increment()
	time.Sleep(5 * time.Millisecond)
	b.Finish()
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{45 * time.Second, "45s"},
		{83 * time.Second, "1m23s"},
	}
	for _, c := range cases {
		if got := formatDuration(c.d); got != c.want {
			t.Errorf("formatDuration(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}
