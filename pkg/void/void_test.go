package void

import (
	"context"
	"errors"
	"github.com/hirotachi/the-void/pkg/store"
	"github.com/hirotachi/the-void/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"sync"
	"testing"
)

type fakeStore struct {
	mu        sync.Mutex
	inserted  []string
	offsets   []int
	insertErr error
	count     int
	countErr  error
	row       *store.Message
	fetchErr  error
}

func (f *fakeStore) InsertMessage(_ context.Context, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, content)
	return f.insertErr
}

func (f *fakeStore) CountVerified(context.Context) (int, error) {
	return f.count, f.countErr
}

func (f *fakeStore) FetchAtOffset(_ context.Context, offset int) (*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offsets = append(f.offsets, offset)
	return f.row, f.fetchErr
}

type alert struct {
	title   string
	message string
}

type recorder struct {
	alerts []alert
}

func (r *recorder) Alert(title, message string) {
	r.alerts = append(r.alerts, alert{title, message})
}

func newTestVoid(st store.Store, opts ...Option) (*Void, *recorder) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	rec := &recorder{}
	opts = append([]Option{WithLogger(log)}, opts...)
	return New(st, rec, opts...), rec
}

func TestVoid_SubmitRejectsBlankDrafts(t *testing.T) {
	for _, draft := range []string{"", "   ", "\n\t ", " "} {
		st := &fakeStore{}
		v, rec := newTestVoid(st)
		v.SetDraft(draft)

		err := v.Submit(context.TODO())
		assert.ErrorIs(t, err, ErrEmptyMessage)
		assert.Empty(t, st.inserted, "no insert for %q", draft)
		require.Len(t, rec.alerts, 1)
		assert.Equal(t, EmptyMessageTitle, rec.alerts[0].title)
		assert.Equal(t, draft, v.Snapshot().Draft)
	}
}

func TestVoid_SubmitInsertsTrimmedDraft(t *testing.T) {
	st := &fakeStore{}
	v, rec := newTestVoid(st)
	v.SetDraft("  hello  ")

	require.NoError(t, v.Submit(context.TODO()))
	assert.Equal(t, []string{"hello"}, st.inserted)
	assert.Equal(t, "", v.Snapshot().Draft)
	assert.Equal(t, []alert{{SentTitle, SentText}}, rec.alerts)
}

func TestVoid_SubmitFailureKeepsDraft(t *testing.T) {
	st := &fakeStore{insertErr: errors.New("network down")}
	v, rec := newTestVoid(st)
	v.SetDraft("hello")

	assert.Error(t, v.Submit(context.TODO()))
	assert.Equal(t, []string{"hello"}, st.inserted)
	assert.Equal(t, "hello", v.Snapshot().Draft)
	assert.Equal(t, []alert{{ErrorTitle, SubmitErrorText}}, rec.alerts)
}

func TestVoid_ReceiveShowsRowContent(t *testing.T) {
	st := &fakeStore{count: 5, row: &store.Message{Content: "from the deep"}}
	v, rec := newTestVoid(st)

	require.NoError(t, v.Receive(context.TODO()))
	require.Len(t, st.offsets, 1)
	assert.GreaterOrEqual(t, st.offsets[0], 0)
	assert.Less(t, st.offsets[0], 5)

	snap := v.Snapshot()
	assert.Equal(t, ShowingResult, snap.State)
	assert.Equal(t, "from the deep", snap.Received)
	assert.Empty(t, rec.alerts)
}

func TestVoid_ReceiveOffsetAlwaysInRange(t *testing.T) {
	st := &fakeStore{count: 3, row: &store.Message{Content: "x"}}
	v, _ := newTestVoid(st)
	for i := 0; i < 200; i++ {
		require.NoError(t, v.Receive(context.TODO()))
	}
	seen := map[int]bool{}
	for _, offset := range st.offsets {
		assert.True(t, offset >= 0 && offset < 3, "offset %d out of range", offset)
		seen[offset] = true
	}
	assert.Len(t, seen, 3)
}

func TestVoid_ReceiveUsesRandomSource(t *testing.T) {
	st := &fakeStore{count: 10, row: &store.Message{Content: "x"}}
	var asked int
	v, _ := newTestVoid(st, WithIntn(func(n int) int {
		asked = n
		return n - 1
	}))

	require.NoError(t, v.Receive(context.TODO()))
	assert.Equal(t, 10, asked)
	assert.Equal(t, []int{9}, st.offsets)
}

func TestVoid_ReceiveWithNoVerifiedRowsStaysLoading(t *testing.T) {
	st := &fakeStore{count: 0}
	v, rec := newTestVoid(st)

	assert.NoError(t, v.Receive(context.TODO()))
	assert.Empty(t, st.offsets)
	assert.Empty(t, rec.alerts)
	snap := v.Snapshot()
	assert.Equal(t, LoadingResult, snap.State)
	assert.True(t, snap.Loading())
	assert.True(t, snap.Viewing())
}

func TestVoid_ReceiveCountErrorStaysLoading(t *testing.T) {
	st := &fakeStore{countErr: errors.New("boom"), count: 4}
	v, rec := newTestVoid(st)

	assert.Error(t, v.Receive(context.TODO()))
	assert.Empty(t, st.offsets)
	assert.Empty(t, rec.alerts)
	assert.Equal(t, LoadingResult, v.Snapshot().State)
}

func TestVoid_ReceiveMissingRowShowsPlaceholder(t *testing.T) {
	st := &fakeStore{count: 2}
	v, _ := newTestVoid(st)

	require.NoError(t, v.Receive(context.TODO()))
	snap := v.Snapshot()
	assert.Equal(t, ShowingResult, snap.State)
	assert.Equal(t, utils.SilentVoidPlaceholder, snap.Received)
}

func TestVoid_ReceiveFetchErrorAlerts(t *testing.T) {
	st := &fakeStore{count: 2, fetchErr: errors.New("boom")}
	v, rec := newTestVoid(st)

	assert.Error(t, v.Receive(context.TODO()))
	assert.Equal(t, []alert{{ErrorTitle, ReceiveErrorText}}, rec.alerts)
	snap := v.Snapshot()
	assert.Equal(t, ShowingResult, snap.State)
	assert.Equal(t, "", snap.Received)
}

func TestVoid_BackDiscardsReceived(t *testing.T) {
	st := &fakeStore{count: 1, row: &store.Message{Content: "x"}}
	v, _ := newTestVoid(st)
	v.SetDraft("draft")
	require.NoError(t, v.Receive(context.TODO()))

	v.Back()
	snap := v.Snapshot()
	assert.Equal(t, Composing, snap.State)
	assert.Equal(t, "", snap.Received)
	assert.Equal(t, "draft", snap.Draft)
	assert.False(t, snap.Viewing())
}

func TestVoid_OnChangeSeesLoadingThenResult(t *testing.T) {
	st := &fakeStore{count: 1, row: &store.Message{Content: "x"}}
	v, _ := newTestVoid(st)
	var states []State
	v.OnChange(func(snap Snapshot) {
		states = append(states, snap.State)
	})

	require.NoError(t, v.Receive(context.TODO()))
	v.Back()
	assert.Equal(t, []State{LoadingResult, ShowingResult, Composing}, states)
}

func TestVoid_Scenario(t *testing.T) {
	st := &fakeStore{}
	v, rec := newTestVoid(st)

	v.SetDraft("   ")
	assert.ErrorIs(t, v.Submit(context.TODO()), ErrEmptyMessage)
	assert.Empty(t, st.inserted)

	v.SetDraft("hello")
	require.NoError(t, v.Submit(context.TODO()))
	assert.Equal(t, []string{"hello"}, st.inserted)
	assert.Equal(t, "", v.Snapshot().Draft)
	assert.Equal(t, SentTitle, rec.alerts[len(rec.alerts)-1].title)

	st.count = 5
	st.row = &store.Message{Content: "echo"}
	require.NoError(t, v.Receive(context.TODO()))
	assert.Contains(t, []int{0, 1, 2, 3, 4}, st.offsets[0])
	assert.Equal(t, "echo", v.Snapshot().Received)

	v.Back()
	st.count = 0
	st.offsets = nil
	require.NoError(t, v.Receive(context.TODO()))
	assert.Empty(t, st.offsets)
	assert.True(t, v.Snapshot().Loading())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "composing", Composing.String())
	assert.Equal(t, "loading-result", LoadingResult.String())
	assert.Equal(t, "showing-result", ShowingResult.String())
	assert.Equal(t, "unknown", State(42).String())
}
