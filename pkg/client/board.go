package client

import (
	"fmt"
	"github.com/hirotachi/the-void/pkg/utils"
	"github.com/hirotachi/the-void/pkg/void"
	"github.com/rivo/tview"
)

type ResultBoard struct {
	View *tview.TextView
}

func NewResultBoard() *ResultBoard {
	view := tview.NewTextView().SetDynamicColors(true).SetWordWrap(true).SetTextAlign(tview.AlignCenter)
	return &ResultBoard{View: view}
}

func (board *ResultBoard) Render(snap void.Snapshot) {
	board.View.SetText(ResultText(snap))
}

// ResultText is what the board shows for snap.
func ResultText(snap void.Snapshot) string {
	if snap.Loading() {
		return utils.LoadingPlaceholder
	}
	return fmt.Sprintf("[white]%s[::-]", tview.Escape(snap.Received))
}

type Option struct {
	Action      string
	Description string
	Prefix      string
}

var keyOptions = []Option{
	{Prefix: "ENTER", Description: "Submit the message to the void."},
	{Prefix: "CTRL+R", Description: "Receive a message from the void."},
	{Prefix: "ESC", Description: "Back to the composer."},
	{Prefix: "CTRL+C", Description: "Quit."},
}

func BuildOptionsList(title string, optionsList []Option) string {
	result := fmt.Sprintf("[lightgrey::b]%s[::-] \n", title)
	for _, option := range optionsList {
		optionText := fmt.Sprintf("  [blue]%s[::-][white::b]%s[::-] [lightgrey]%s[::-]\n", option.Prefix, option.Action, option.Description)
		result += optionText
	}
	return result
}
