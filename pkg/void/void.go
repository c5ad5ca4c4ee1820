// Package void implements the submit and receive flows of the void screen on
// top of a store.Store.
package void

import (
	"context"
	"errors"
	"github.com/hirotachi/the-void/pkg/store"
	"github.com/hirotachi/the-void/pkg/utils"
	"github.com/sirupsen/logrus"
	"math/rand"
	"strings"
	"sync"
	"time"
)

var ErrEmptyMessage = errors.New("empty message")

// Alerts shown to the user.
const (
	EmptyMessageTitle = "Empty Message"
	EmptyMessageText  = "Please enter a message before submitting to the void."
	SentTitle         = "Message Sent"
	SentText          = "Your message has been consumed by the void."
	ErrorTitle        = "Error"
	SubmitErrorText   = "Failed to send message to the void. Try again later."
	ReceiveErrorText  = "Failed to receive message from the void. Try again later."
)

type Notifier interface {
	Alert(title, message string)
}

type NotifierFunc func(title, message string)

func (f NotifierFunc) Alert(title, message string) {
	f(title, message)
}

type Void struct {
	Store    store.Store
	Notifier Notifier
	log      logrus.FieldLogger
	intn     func(n int) int

	mu        sync.Mutex
	state     State
	draft     string
	received  string
	listeners []func(Snapshot)
}

type Option func(*Void)

// WithIntn replaces the source of random offsets.
func WithIntn(intn func(n int) int) Option {
	return func(v *Void) {
		v.intn = intn
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(v *Void) {
		v.log = log
	}
}

func New(st store.Store, notifier Notifier, opts ...Option) *Void {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var rngMu sync.Mutex
	v := &Void{
		Store:    st,
		Notifier: notifier,
		log:      logrus.StandardLogger(),
		intn: func(n int) int {
			rngMu.Lock()
			defer rngMu.Unlock()
			return rng.Intn(n)
		},
		state: Composing,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// OnChange registers fn to be called with a snapshot after every state change.
func (v *Void) OnChange(fn func(Snapshot)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listeners = append(v.listeners, fn)
}

func (v *Void) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot()
}

func (v *Void) snapshot() Snapshot {
	return Snapshot{State: v.state, Draft: v.draft, Received: v.received}
}

// update applies fn under the lock and notifies listeners outside of it.
func (v *Void) update(fn func()) {
	v.mu.Lock()
	fn()
	snap := v.snapshot()
	listeners := append([]func(Snapshot){}, v.listeners...)
	v.mu.Unlock()
	for _, listener := range listeners {
		listener(snap)
	}
}

func (v *Void) alert(title, message string) {
	if v.Notifier != nil {
		v.Notifier.Alert(title, message)
	}
}

func (v *Void) SetDraft(draft string) {
	v.update(func() {
		v.draft = draft
	})
}

// Submit inserts the trimmed draft. The draft is cleared only on success.
// Nothing guards against a second Submit while one is in flight.
func (v *Void) Submit(ctx context.Context) error {
	v.mu.Lock()
	content := strings.TrimSpace(v.draft)
	v.mu.Unlock()

	if content == "" {
		v.alert(EmptyMessageTitle, EmptyMessageText)
		return ErrEmptyMessage
	}

	if err := v.Store.InsertMessage(ctx, content); err != nil {
		v.log.WithError(err).Error("error submitting to void")
		v.alert(ErrorTitle, SubmitErrorText)
		return err
	}

	v.update(func() {
		v.draft = ""
	})
	v.alert(SentTitle, SentText)
	return nil
}

// Receive shows a random verified message. When the count fails or there are
// no verified messages it returns with the state left in LoadingResult.
func (v *Void) Receive(ctx context.Context) error {
	v.update(func() {
		v.state = LoadingResult
	})

	count, err := v.Store.CountVerified(ctx)
	if err != nil || count <= 0 {
		v.log.WithError(err).WithField("count", count).Error("error getting row count")
		return err
	}

	offset := v.intn(count)
	message, err := v.Store.FetchAtOffset(ctx, offset)
	if err != nil {
		v.update(func() {
			v.state = ShowingResult
			v.received = ""
		})
		v.log.WithError(err).WithField("offset", offset).Error("error receiving from void")
		v.alert(ErrorTitle, ReceiveErrorText)
		return err
	}

	v.update(func() {
		v.state = ShowingResult
		if message != nil {
			v.received = message.Content
		} else {
			v.received = utils.SilentVoidPlaceholder
		}
	})
	return nil
}

// Back returns to the composer and discards the received message.
func (v *Void) Back() {
	v.update(func() {
		v.state = Composing
		v.received = ""
	})
}
