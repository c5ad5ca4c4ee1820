// Package client is the terminal screen of the void.
package client

import (
	"context"
	"github.com/gdamore/tcell/v2"
	"github.com/hirotachi/the-void/pkg/void"
	"github.com/rivo/tview"
	"time"
)

const (
	MainPage  = "main"
	AlertPage = "alert"
)

type VoidClient struct {
	App     *tview.Application
	Pages   *tview.Pages
	Void    *void.Void
	Layout  *tview.Flex
	Title   *tview.TextView
	Board   *ResultBoard
	Input   *InputSection
	Receive *tview.Button
	Back    *tview.Button
	Help    *tview.TextView
	Timeout time.Duration
}

// NewVoidClient builds the screen around v and routes v's alerts to a modal.
func NewVoidClient(v *void.Void, timeout time.Duration) *VoidClient {
	app := tview.NewApplication()
	c := &VoidClient{
		App:     app,
		Pages:   tview.NewPages(),
		Void:    v,
		Timeout: timeout,
	}
	v.Notifier = c

	c.Title = tview.NewTextView().SetTextAlign(tview.AlignCenter).SetDynamicColors(true).
		SetText("[mediumpurple::b]THE_VOID[::-]")
	c.Board = NewResultBoard()
	c.Input = NewInputSection(v, c.Submit)
	c.Receive = tview.NewButton("RECEIVE_FROM_THE_VOID").SetSelectedFunc(c.ReceiveFromVoid)
	c.Back = tview.NewButton("BACK").SetSelectedFunc(v.Back)
	c.Help = tview.NewTextView().SetDynamicColors(true).SetText(BuildOptionsList("Keys", keyOptions))
	c.Layout = tview.NewFlex().SetDirection(tview.FlexRow)
	c.Layout.SetBorder(true).SetBorderColor(tcell.ColorMediumPurple)

	c.Pages.AddPage(MainPage, c.Layout, true, true)
	app.SetRoot(c.Pages, true).EnableMouse(true)
	app.SetInputCapture(c.captureKeys)

	// listeners also fire on the event loop; QueueUpdateDraw must not run inline
	v.OnChange(func(void.Snapshot) {
		go app.QueueUpdateDraw(func() {
			c.Render(c.Void.Snapshot())
		})
	})
	c.Render(v.Snapshot())
	return c
}

func (c *VoidClient) Run() error {
	return c.App.Run()
}

// Render lays out the screen for snap: the composer while composing, the
// result board otherwise.
func (c *VoidClient) Render(snap void.Snapshot) {
	c.Layout.Clear()
	c.Layout.AddItem(c.Title, 3, 0, false)
	if snap.Viewing() {
		c.Board.Render(snap)
		c.Layout.AddItem(c.Board.View, 0, 1, false)
		c.Layout.AddItem(c.Back, 1, 0, true)
		if !c.hasAlert() {
			c.App.SetFocus(c.Back)
		}
	} else {
		c.Input.Sync(snap.Draft)
		c.Layout.AddItem(tview.NewBox(), 0, 1, false)
		c.Layout.AddItem(c.Input.View, 1, 0, true)
		c.Layout.AddItem(c.Input.Submit, 1, 0, false)
		c.Layout.AddItem(tview.NewBox(), 1, 0, false)
		c.Layout.AddItem(c.Receive, 1, 0, false)
		c.Layout.AddItem(tview.NewBox(), 0, 1, false)
		if !c.hasAlert() {
			c.App.SetFocus(c.Input.View)
		}
	}
	c.Layout.AddItem(c.Help, len(keyOptions)+1, 0, false)
}

func (c *VoidClient) requestContext() (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.Timeout)
}

// Submit runs the submit flow off the UI goroutine.
func (c *VoidClient) Submit() {
	go func() {
		ctx, cancel := c.requestContext()
		defer cancel()
		c.Void.Submit(ctx)
	}()
}

func (c *VoidClient) ReceiveFromVoid() {
	go func() {
		ctx, cancel := c.requestContext()
		defer cancel()
		c.Void.Receive(ctx)
	}()
}

// Alert shows a modal; it is safe to call from any goroutine.
func (c *VoidClient) Alert(title, message string) {
	go c.App.QueueUpdateDraw(func() {
		modal := tview.NewModal().
			SetText(title + "\n\n" + message).
			AddButtons([]string{"OK"}).
			SetDoneFunc(func(int, string) {
				c.Pages.RemovePage(AlertPage)
				c.Render(c.Void.Snapshot())
			})
		c.Pages.AddPage(AlertPage, modal, false, true)
		c.App.SetFocus(modal)
	})
}

func (c *VoidClient) hasAlert() bool {
	return c.Pages.HasPage(AlertPage)
}

func (c *VoidClient) captureKeys(event *tcell.EventKey) *tcell.EventKey {
	if c.hasAlert() {
		return event
	}
	switch event.Key() {
	case tcell.KeyCtrlR:
		if !c.Void.Snapshot().Viewing() {
			c.ReceiveFromVoid()
		}
		return nil
	case tcell.KeyEscape:
		if c.Void.Snapshot().Viewing() {
			c.Void.Back()
		}
		return nil
	}
	return event
}
