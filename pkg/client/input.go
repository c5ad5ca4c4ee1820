package client

import (
	"github.com/gdamore/tcell/v2"
	"github.com/hirotachi/the-void/pkg/void"
	"github.com/rivo/tview"
)

type InputSection struct {
	View    *tview.InputField
	Submit  *tview.Button
	syncing bool
}

func NewInputSection(v *void.Void, submit func()) *InputSection {
	inputView := tview.NewInputField()
	inputView.SetPlaceholder("Enter your message...").
		SetPlaceholderTextColor(tcell.ColorGrey)
	inputView.SetLabel(">").SetLabelColor(tcell.ColorMediumPurple).SetLabelWidth(2)
	inputView.SetFieldTextColor(tcell.ColorWhite).SetFieldBackgroundColor(tcell.ColorBlack)
	inputView.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			submit()
		}
	})

	inputSection := &InputSection{
		View:   inputView,
		Submit: tview.NewButton("SUBMIT_TO_THE_VOID").SetSelectedFunc(submit),
	}
	inputView.SetChangedFunc(func(text string) {
		if inputSection.syncing {
			return
		}
		v.SetDraft(text)
	})
	return inputSection
}

// Sync puts draft into the field unless it already shows it, so typing does
// not move the cursor. The change it makes is not fed back into the draft.
func (s *InputSection) Sync(draft string) {
	if s.View.GetText() == draft {
		return
	}
	s.syncing = true
	s.View.SetText(draft)
	s.syncing = false
}
