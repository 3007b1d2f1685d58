package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func wait(t *testing.T, tk Ticket) {
	t.Helper()
	select {
	case <-tk.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("call did not complete")
	}
}

func echo(_ context.Context, s string) (string, error) { return "echo:" + s, nil }

func TestTracker_Success(t *testing.T) {
	tr := New(context.Background(), echo)
	assert.Equal(t, StatusIdle, tr.State().Status)

	var applied string
	tk := tr.Invoke("a", func(res string, err error) {
		require.NoError(t, err)
		applied = res
	})
	wait(t, tk)

	st := tr.State()
	assert.Equal(t, StatusSuccess, st.Status)
	require.NotNil(t, st.LastResult)
	assert.Equal(t, "echo:a", *st.LastResult)
	assert.Equal(t, "echo:a", applied)
	assert.False(t, tr.Pending())
}

func TestTracker_ErrorMessage(t *testing.T) {
	fail := func(context.Context, string) (string, error) { return "", errors.New("status 500") }
	tr := New(context.Background(), fail, WithErrorMessage(func(err error) string {
		return "Classification failed: " + err.Error()
	}))

	var gotErr error
	wait(t, tr.Invoke("x", func(_ string, err error) { gotErr = err }))

	st := tr.State()
	assert.Equal(t, StatusError, st.Status)
	assert.Equal(t, "Classification failed: status 500", st.LastError)
	assert.Nil(t, st.LastResult)
	assert.EqualError(t, gotErr, "status 500")
}

func TestTracker_LatestWins(t *testing.T) {
	release := make(chan struct{})
	fn := func(ctx context.Context, s string) (string, error) {
		if s == "slow" {
			<-release
		}
		return s, nil
	}
	tr := New(context.Background(), fn)

	var mu sync.Mutex
	var applied []string
	record := func(res string, _ error) {
		mu.Lock()
		defer mu.Unlock()
		applied = append(applied, res)
	}

	slow := tr.Invoke("slow", record)
	fast := tr.Invoke("fast", record)
	wait(t, fast)
	close(release)
	wait(t, slow)

	assert.Equal(t, []string{"fast"}, applied)
	assert.Equal(t, "fast", *tr.State().LastResult)
	assert.Greater(t, fast.Seq, slow.Seq)
}

func TestTracker_Timeout(t *testing.T) {
	block := func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	tr := New(context.Background(), block, WithTimeout(10*time.Millisecond))

	wait(t, tr.Invoke("x", nil))

	st := tr.State()
	assert.Equal(t, StatusError, st.Status)
	assert.Equal(t, TimeoutMessage, st.LastError)
}

func TestTracker_CancelledContextDropsOutcome(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	fn := func(ctx context.Context, _ string) (string, error) {
		close(started)
		<-ctx.Done()
		return "late", nil
	}
	tr := New(ctx, fn)

	called := false
	tk := tr.Invoke("x", func(string, error) { called = true })
	<-started
	cancel()
	wait(t, tk)
	tr.Wait()

	assert.False(t, called)
	assert.Equal(t, StatusPending, tr.State().Status)
}

func TestTracker_ResetDropsInFlight(t *testing.T) {
	release := make(chan struct{})
	fn := func(context.Context, string) (string, error) {
		<-release
		return "old", nil
	}
	tr := New(context.Background(), fn)

	called := false
	tk := tr.Invoke("x", func(string, error) { called = true })
	tr.Reset()
	close(release)
	wait(t, tk)

	assert.False(t, called)
	assert.Equal(t, Snapshot[string]{Status: StatusIdle}, tr.State())
}

func TestTracker_CompletionHoldsLocker(t *testing.T) {
	var session sync.Mutex
	tr := New(context.Background(), echo, WithLocker(&session))

	session.Lock()
	tk := tr.Invoke("a", nil)
	select {
	case <-tk.Done():
		t.Fatal("completion ran while the session lock was held")
	case <-time.After(20 * time.Millisecond):
	}
	session.Unlock()
	wait(t, tk)
	assert.Equal(t, StatusSuccess, tr.State().Status)
}
