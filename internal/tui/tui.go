// Package tui is the interactive collector: a form for new items and a list
// for reviewing, copying and deleting them.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/idilsaglam/quickcollect/internal/app"
	"github.com/idilsaglam/quickcollect/internal/enhance"
	"github.com/idilsaglam/quickcollect/internal/model"
	"github.com/idilsaglam/quickcollect/internal/store"
)

// Form fields in focus order.
const (
	fieldTitle = iota
	fieldDesc
	fieldPrice
	fieldStock
	fieldRemarks
	fieldImage
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Description", "Price", "Stock", "Remarks", "Image file"}

type optimizedMsg struct {
	ticket app.Ticket
	text   string
}

type noticeExpiredMsg struct{ seq int }

type modelTUI struct {
	ctx  context.Context
	ctrl *app.Controller
	log  *zap.Logger

	width, height int

	// collecting
	inputs     [fieldCount]textinput.Model // fieldDesc slot unused; desc is a textarea
	desc       textarea.Model
	focus      int
	optimizing bool
	formErr    string

	// reviewing
	list       list.Model
	confirming bool
	confirmFor string

	// transient
	notice    string
	noticeSeq int
	status    string
}

// Run starts the Bubble Tea program and blocks until the user quits.
func Run(ctx context.Context, ctrl *app.Controller, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	p := tea.NewProgram(newModel(ctx, ctrl, log), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func newModel(ctx context.Context, ctrl *app.Controller, log *zap.Logger) modelTUI {
	if log == nil {
		log = zap.NewNop()
	}
	m := modelTUI{ctx: ctx, ctrl: ctrl, log: log.Named("tui"), width: 80, height: 24}

	placeholders := [fieldCount]string{
		fieldTitle:   "Product name",
		fieldPrice:   "0.00",
		fieldStock:   "0",
		fieldRemarks: "Extra notes",
		fieldImage:   "/path/to/photo.jpg",
	}
	for i := range m.inputs {
		if i == fieldDesc {
			continue
		}
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 200
		if i == fieldImage {
			ti.CharLimit = 1024
		}
		m.inputs[i] = ti
	}
	m.inputs[fieldTitle].Focus()

	m.desc = textarea.New()
	m.desc.Placeholder = "Product details..."
	m.desc.ShowLineNumbers = false
	m.desc.SetHeight(4)
	m.desc.CharLimit = 2000

	l := list.New(toListItems(ctrl.Items()), itemDelegate{}, 0, 0)
	l.Title = "Collected"
	l.SetShowHelp(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")

	copyBind := key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy row"))
	exportBind := key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "copy table"))
	delBind := key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	newBind := key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "new item"))
	l.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{copyBind, exportBind, delBind, newBind} }
	l.AdditionalFullHelpKeys = func() []key.Binding { return []key.Binding{copyBind, exportBind, delBind, newBind} }
	m.list = l
	m.resize()
	return m
}

func (m modelTUI) Init() tea.Cmd { return textinput.Blink }

func (m *modelTUI) resize() {
	w := max(20, m.width-4)
	for i := range m.inputs {
		m.inputs[i].Width = w - 4
	}
	m.desc.SetWidth(w)
	m.list.SetSize(w, max(5, m.height-4))
}

func (m modelTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case optimizedMsg:
		if !m.ctrl.Accept(msg.ticket) {
			return m, nil
		}
		m.optimizing = false
		m.desc.SetValue(msg.text)
		return m, nil

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	if m.ctrl.View() == app.Reviewing {
		return m.updateReview(msg)
	}
	return m.updateForm(msg)
}

// ---------------- collecting ----------------

func (m modelTUI) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "ctrl+t", "esc":
			m.ctrl.Show(app.Reviewing)
			return m, nil
		case "ctrl+s":
			return m.save()
		case "ctrl+o":
			return m.optimize()
		case "tab", "down":
			if m.focus == fieldDesc && k.String() == "down" {
				break
			}
			return m, m.setFocus((m.focus + 1) % fieldCount)
		case "shift+tab", "up":
			if m.focus == fieldDesc && k.String() == "up" {
				break
			}
			return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		case "enter":
			if m.focus != fieldDesc {
				if m.focus == fieldCount-1 {
					return m.save()
				}
				return m, m.setFocus(m.focus + 1)
			}
		}
	}

	var cmd tea.Cmd
	if m.focus == fieldDesc {
		m.desc, cmd = m.desc.Update(msg)
	} else {
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	}
	return m, cmd
}

func (m *modelTUI) setFocus(i int) tea.Cmd {
	for j := range m.inputs {
		if j != fieldDesc {
			m.inputs[j].Blur()
		}
	}
	m.desc.Blur()
	m.focus = i
	if i == fieldDesc {
		return m.desc.Focus()
	}
	return m.inputs[i].Focus()
}

func (m modelTUI) draft() model.Draft {
	return model.Draft{
		Title:       m.inputs[fieldTitle].Value(),
		Description: m.desc.Value(),
		Price:       strings.TrimSpace(m.inputs[fieldPrice].Value()),
		Stock:       strings.TrimSpace(m.inputs[fieldStock].Value()),
		Remarks:     m.inputs[fieldRemarks].Value(),
	}
}

func (m modelTUI) optimize() (tea.Model, tea.Cmd) {
	title, desc := m.inputs[fieldTitle].Value(), m.desc.Value()
	if !enhance.CanOptimize(title, desc) {
		m.formErr = "Enter a title or description before optimizing"
		return m, nil
	}
	m.formErr = ""
	m.optimizing = true
	t := m.ctrl.BeginOptimize()
	ctx, ctrl := m.ctx, m.ctrl
	return m, func() tea.Msg {
		return optimizedMsg{ticket: t, text: ctrl.Optimize(ctx, title, desc)}
	}
}

func (m modelTUI) save() (tea.Model, tea.Cmd) {
	d := m.draft()
	if p := strings.TrimSpace(m.inputs[fieldImage].Value()); p != "" {
		uri, err := model.ImageDataURI(p)
		if err != nil {
			m.formErr = err.Error()
			return m, nil
		}
		d.Image = uri
	}

	n, err := m.ctrl.Save(m.ctx, d)
	switch {
	case errors.Is(err, model.ErrEmptyTitle):
		m.formErr = "Title cannot be empty"
		return m, m.setFocus(fieldTitle)
	case err != nil && !errors.Is(err, store.ErrNotPersisted):
		m.formErr = err.Error()
		return m, nil
	}

	m.status = ""
	if err != nil {
		m.status = "Saved in memory only: " + err.Error()
	}
	m.resetForm()
	m.list.SetItems(toListItems(m.ctrl.Items()))
	m.list.Select(0)
	return m, m.showNotice(n)
}

func (m *modelTUI) resetForm() {
	for i := range m.inputs {
		if i != fieldDesc {
			m.inputs[i].SetValue("")
		}
	}
	m.desc.Reset()
	m.formErr = ""
	m.optimizing = false
	m.ctrl.ResetForm()
	m.setFocus(fieldTitle)
}

func (m *modelTUI) showNotice(n app.Notice) tea.Cmd {
	m.noticeSeq++
	seq := m.noticeSeq
	m.notice = n.Text
	return tea.Tick(n.TTL, func(time.Time) tea.Msg { return noticeExpiredMsg{seq: seq} })
}

// ---------------- reviewing ----------------

func (m modelTUI) updateReview(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.confirming {
		if k, ok := msg.(tea.KeyMsg); ok {
			switch k.String() {
			case "y", "Y", "enter":
				m.confirming = false
				removed, err := m.ctrl.ConfirmDelete(m.ctx)
				if err != nil {
					m.status = err.Error()
				}
				if removed {
					m.list.SetItems(toListItems(m.ctrl.Items()))
				}
			case "n", "N", "esc", "q":
				m.confirming = false
				m.ctrl.CancelDelete()
			}
		}
		return m, nil
	}

	if k, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch k.String() {
		case "q":
			return m, tea.Quit
		case "tab", "ctrl+t":
			m.ctrl.Show(app.Collecting)
			return m, m.setFocus(fieldTitle)
		case "d":
			if it, ok := m.selected(); ok {
				if _, err := m.ctrl.RequestDelete(it.ID); err != nil {
					m.status = err.Error()
					return m, nil
				}
				m.confirming = true
				m.confirmFor = it.Title
			}
			return m, nil
		case "c":
			if it, ok := m.selected(); ok {
				if err := m.ctrl.ExportOne(it.ID); err != nil {
					m.status = "Copy failed: " + err.Error()
					return m, nil
				}
				return m, m.showNotice(app.Notice{Text: "Row copied!", TTL: 2 * time.Second})
			}
			return m, nil
		case "x":
			n, err := m.ctrl.ExportAll()
			if errors.Is(err, app.ErrNothingToExport) {
				return m, nil
			}
			if err != nil {
				m.status = "Copy failed: " + err.Error()
				return m, nil
			}
			return m, m.showNotice(app.Notice{
				Text: fmt.Sprintf("Copied %d rows, paste into your spreadsheet", n),
				TTL:  2 * time.Second,
			})
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m modelTUI) selected() (model.Item, bool) {
	li, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Item{}, false
	}
	return li.it, true
}

// ---------------- view ----------------

func (m modelTUI) View() string {
	var b strings.Builder
	if m.ctrl.View() == app.Reviewing {
		b.WriteString(header("Collected list", "All records, one key to copy as a spreadsheet table"))
		b.WriteString("\n\n")
		if m.confirming {
			b.WriteString(modalStyle.Render(
				labelStyle.Render("Delete this record?") + "\n\n" +
					m.confirmFor + "\n\n" +
					helpStyle.Render("y/enter: delete   n/esc: cancel")))
		} else if len(m.list.Items()) == 0 {
			b.WriteString(mutedStyle.Render("Nothing collected yet. Press tab to add an item."))
		} else {
			b.WriteString(m.list.View())
		}
	} else {
		b.WriteString(header("Data collection", "Fill in product details, AI polishes the copy"))
		b.WriteString("\n\n")
		b.WriteString(m.formView())
	}

	if m.status != "" {
		b.WriteString("\n" + errorStyle.Render(m.status))
	}
	if m.notice != "" {
		b.WriteString("\n\n" + noticeStyle.Render(m.notice))
	}
	return panelString(b.String())
}

func header(title, subtitle string) string {
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), subtitleStyle.Render(subtitle))
}

func (m modelTUI) formView() string {
	var rows []string
	for i := 0; i < fieldCount; i++ {
		label := labelStyle.Render(fieldLabels[i])
		if i == m.focus {
			label = focusLabel.Render(fieldLabels[i])
		}
		if i == fieldDesc {
			ai := mutedStyle.Render("ctrl+o: AI optimize")
			if m.optimizing {
				ai = pendingStyle.Render("optimizing…")
			}
			rows = append(rows, label+"  "+ai, m.desc.View(), "")
			continue
		}
		rows = append(rows, label, m.inputs[i].View(), "")
	}
	if m.formErr != "" {
		rows = append(rows, errorStyle.Render(m.formErr))
	}
	rows = append(rows, helpStyle.Render("tab/shift+tab: move   ctrl+s: save   ctrl+o: optimize   esc: list   ctrl+c: quit"))
	return strings.Join(rows, "\n")
}
