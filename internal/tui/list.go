package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/idilsaglam/quickcollect/internal/model"
)

// listItem adapts model.Item to bubbles/list.Item
type listItem struct {
	it model.Item
}

func (i listItem) Title() string { return i.it.Title }
func (i listItem) Description() string {
	return strings.Join(strings.Fields(i.it.Description), " ")
}
func (i listItem) FilterValue() string { return i.it.Title + " " + i.it.Remarks }

func toListItems(items []model.Item) []list.Item {
	out := make([]list.Item, 0, len(items))
	for _, it := range items {
		out = append(out, listItem{it: it})
	}
	return out
}

// itemDelegate renders two lines per item: title row and description preview.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 2 }
func (d itemDelegate) Spacing() int                              { return 1 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	li, ok := item.(listItem)
	if !ok {
		return
	}
	it := li.it

	mark := mutedStyle.Render(noImageMark)
	if it.Image != "" {
		mark = successStyle.Render(imageMark)
	}
	price := string(it.Price)
	if price == "" {
		price = "0.00"
	}
	stock := string(it.Stock)
	if stock == "" {
		stock = "0"
	}

	width := m.Width()
	if width <= 0 {
		width = 80
	}
	title := runewidth.Truncate(it.Title, max(10, width-30), "…")
	line := fmt.Sprintf("%s %s  %s  %s", mark, title,
		accentStyle.Render("¥"+price),
		mutedStyle.Render("stock "+stock))

	desc := li.Description()
	if desc == "" {
		desc = "(no description)"
	}
	desc = runewidth.Truncate(desc, max(10, width-6), "…")

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render(">") + " "
	}
	fmt.Fprintln(w, prefix+line)
	fmt.Fprint(w, "    "+mutedStyle.Render(desc))
}
