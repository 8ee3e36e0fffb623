package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/ssdpscan/internal/description"
	"github.com/muurk/ssdpscan/internal/discovery"
	"github.com/muurk/ssdpscan/internal/ssdp"
)

// Searcher runs SSDP searches. *discovery.Coordinator implements it.
type Searcher interface {
	Search(ctx context.Context, req discovery.Request, obs discovery.Observer) <-chan struct{}
	ClearCache()
	EffectiveTimeout(requested time.Duration) time.Duration
}

const (
	eventQueueSize = 32
	progressTick   = 100 * time.Millisecond
)

// Messages for the streaming search. gen ties each message to the search
// that produced it so messages from a superseded search are ignored.
type searchStartMsg struct{ gen int }
type descriptionMsg struct {
	gen int
	ev  discovery.DescriptionEvent
}
type deviceFoundMsg struct {
	gen int
	ev  discovery.DeviceEvent
}
type searchDoneMsg struct{ gen int }
type progressTickMsg struct{ gen int }

// browseKeyMap defines key bindings for the device list
type browseKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Clear  key.Binding
	All    key.Binding
	Target key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k browseKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.All, k.Target, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k browseKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Clear, k.All, k.Target, k.Quit},
	}
}

// detailKeyMap defines key bindings for the endpoint detail view
type detailKeyMap struct {
	Scroll key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k detailKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Scroll, k.Back, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k detailKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Scroll, k.Back, k.Quit}}
}

// targetKeyMap defines key bindings for search target entry
type targetKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k targetKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (k targetKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Confirm, k.Cancel}}
}

// deviceEntry is one camera in the list, merged across every adapter it
// answered on
type deviceEntry struct {
	device     *description.Device
	location   string
	localAddrs []string
	adapters   []string
}

func (e *deviceEntry) addSighting(ev discovery.DeviceEvent) {
	if ev.LocalAddr != nil {
		e.localAddrs = appendUnique(e.localAddrs, ev.LocalAddr.String())
	}
	e.adapters = appendUnique(e.adapters, ev.Adapter.Name())
}

func appendUnique(list []string, s string) []string {
	if s == "" {
		return list
	}
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

func (e *deviceEntry) name() string {
	if e.device.FriendlyName != "" {
		return e.device.FriendlyName
	}
	return e.device.ModelName
}

// deviceItem wraps a deviceEntry for use with bubbles/list
type deviceItem struct {
	entry *deviceEntry
}

// FilterValue filters by name, model and UDN
func (d deviceItem) FilterValue() string {
	return d.entry.device.FriendlyName + " " + d.entry.device.ModelName + " " + d.entry.device.UDN
}

// deviceDelegate renders device cards
type deviceDelegate struct {
	width int
}

func (d deviceDelegate) Height() int { return 8 } // Card height including borders

func (d deviceDelegate) Spacing() int { return 1 }

func (d deviceDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d deviceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	di, ok := item.(deviceItem)
	if !ok {
		return
	}

	entry := di.entry
	selected := index == m.Index()

	var content strings.Builder
	if selected {
		content.WriteString(SelectedItemStyle.Render("→ " + entry.name()))
	} else {
		content.WriteString("  " + entry.name())
	}
	content.WriteString("\n\n")

	content.WriteString(RenderField("  Model", entry.device.ModelName) + "\n")
	content.WriteString(RenderField("  UDN", entry.device.UDN) + "\n")
	content.WriteString(RenderField("  Seen via", strings.Join(entry.localAddrs, ", ")) + "\n")
	content.WriteString(RenderField("  Services", strings.Join(entry.device.ServiceTypes(), ", ")))

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 2).
		MarginLeft(2)

	cardWidth := d.width - 6 // 2 for margin-left, 4 for border + padding
	if cardWidth < MinTerminalWidth-6 {
		cardWidth = MinTerminalWidth - 6
	}
	if cardWidth > MaxContentWidth-6 {
		cardWidth = MaxContentWidth - 6
	}
	cardStyle = cardStyle.Width(cardWidth)

	if selected {
		cardStyle = cardStyle.BorderForeground(HighlightColor)
	}

	fmt.Fprint(w, cardStyle.Render(content.String()))
}

// BrowseModel is the interactive discovery screen. It streams devices into
// the list as the search finds them.
type BrowseModel struct {
	// Search state
	Searcher     Searcher
	Request      discovery.Request
	Scanning     bool
	ScanStart    time.Time
	ScanTimeout  time.Duration
	Descriptions int
	DeviceList   list.Model

	// Detail view state
	Detail   bool
	Viewport viewport.Model

	// Search target entry state
	TargetMode  bool
	TargetInput textinput.Model

	// UI state
	Width       int
	Height      int
	Spinner     spinner.Model
	ProgressBar progress.Model
	Help        help.Model
	Keys        browseKeyMap
	DetailKeys  detailKeyMap
	TargetKeys  targetKeyMap

	gen     int
	cancel  context.CancelFunc
	events  chan tea.Msg
	entries map[string]*deviceEntry
}

// NewBrowseModel creates a browse screen that searches with s using req
func NewBrowseModel(s Searcher, req discovery.Request) BrowseModel {
	if req.ST == "" {
		req.ST = ssdp.ScalarWebAPIService
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	targetInput := textinput.New()
	targetInput.Placeholder = ssdp.SearchAll
	targetInput.CharLimit = 256
	targetInput.Width = 60

	progressBar := progress.New(progress.WithDefaultGradient())
	progressBar.Width = 40

	deviceList := list.New([]list.Item{}, deviceDelegate{width: MinTerminalWidth}, 0, 0)
	deviceList.Title = "Discovered Cameras"
	deviceList.SetShowStatusBar(false)
	deviceList.SetShowHelp(false)
	deviceList.SetFilteringEnabled(true)
	deviceList.Styles.Title = TitleStyle

	keys := browseKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "endpoints"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear cache"),
		),
		All: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "cameras/all"),
		),
		Target: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "search target"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}

	detailKeys := detailKeyMap{
		Scroll: key.NewBinding(
			key.WithKeys("up", "down", "pgup", "pgdown"),
			key.WithHelp("↑/↓", "scroll"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}

	targetKeys := targetKeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}

	return BrowseModel{
		Searcher:    s,
		Request:     req,
		DeviceList:  deviceList,
		Viewport:    viewport.New(MinTerminalWidth-4, 10),
		TargetInput: targetInput,
		Spinner:     sp,
		ProgressBar: progressBar,
		Help:        help.New(),
		Keys:        keys,
		DetailKeys:  detailKeys,
		TargetKeys:  targetKeys,
		entries:     make(map[string]*deviceEntry),
	}
}

// Init starts the first search
func (m BrowseModel) Init() tea.Cmd {
	return func() tea.Msg { return searchStartMsg{gen: m.gen + 1} }
}

// Update handles messages and updates the model
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case m.TargetMode:
			return m.updateTargetMode(msg)
		case m.Detail:
			return m.updateDetailMode(msg)
		default:
			return m.updateNormalMode(msg)
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.DeviceList.SetDelegate(deviceDelegate{width: msg.Width - 4})
		m.DeviceList.SetSize(msg.Width-4, m.listHeight())
		m.Viewport.Width = msg.Width - 8
		m.Viewport.Height = msg.Height - 10
		return m, nil

	case searchStartMsg:
		if msg.gen <= m.gen {
			return m, nil
		}
		return m.startSearch()

	case descriptionMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.Descriptions++
		return m, waitForEvent(m.events)

	case deviceFoundMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		cmd = m.addDevice(msg.ev)
		return m, tea.Batch(cmd, waitForEvent(m.events))

	case searchDoneMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.Scanning = false
		m.cancelSearch()
		return m, nil

	case progressTickMsg:
		if msg.gen != m.gen || !m.Scanning {
			return m, nil
		}
		return m, progressTickCmd(m.gen)

	case spinner.TickMsg:
		if !m.Scanning {
			return m, nil
		}
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	if !m.Detail && !m.TargetMode {
		m.DeviceList, cmd = m.DeviceList.Update(msg)
	}
	return m, cmd
}

// updateNormalMode handles keyboard input in the device list
func (m BrowseModel) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.DeviceList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.DeviceList, cmd = m.DeviceList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.Keys.Quit):
		m.cancelSearch()
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Enter):
		if entry := m.selectedEntry(); entry != nil {
			m.Detail = true
			m.Viewport.SetContent(renderDetail(entry))
			m.Viewport.GotoTop()
		}
		return m, nil

	case key.Matches(msg, m.Keys.Rescan):
		return m.startSearch()

	case key.Matches(msg, m.Keys.Clear):
		m.Searcher.ClearCache()
		return m.startSearch()

	case key.Matches(msg, m.Keys.All):
		if m.Request.ST == ssdp.ScalarWebAPIService {
			m.Request.ST = ssdp.SearchAll
		} else {
			m.Request.ST = ssdp.ScalarWebAPIService
		}
		return m.startSearch()

	case key.Matches(msg, m.Keys.Target):
		m.TargetMode = true
		m.TargetInput.SetValue("")
		cmd := m.TargetInput.Focus()
		return m, cmd
	}

	var cmd tea.Cmd
	m.DeviceList, cmd = m.DeviceList.Update(msg)
	return m, cmd
}

// updateDetailMode handles keyboard input in the endpoint detail view
func (m BrowseModel) updateDetailMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.DetailKeys.Quit):
		m.cancelSearch()
		return m, tea.Quit
	case key.Matches(msg, m.DetailKeys.Back):
		m.Detail = false
		return m, nil
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// updateTargetMode handles keyboard input in search target entry
func (m BrowseModel) updateTargetMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.TargetKeys.Cancel):
		m.TargetMode = false
		m.TargetInput.Blur()
		return m, nil

	case key.Matches(msg, m.TargetKeys.Confirm):
		value := strings.TrimSpace(m.TargetInput.Value())
		if value == "" {
			value = ssdp.SearchAll
		}
		m.TargetMode = false
		m.TargetInput.Blur()
		m.Request.ST = value
		return m.startSearch()
	}

	var cmd tea.Cmd
	m.TargetInput, cmd = m.TargetInput.Update(msg)
	return m, cmd
}

// startSearch cancels any running search, clears the list and starts a new
// search whose events are delivered through m.events
func (m BrowseModel) startSearch() (BrowseModel, tea.Cmd) {
	m.cancelSearch()

	m.gen++
	gen := m.gen

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan tea.Msg, eventQueueSize)

	m.cancel = cancel
	m.events = events
	m.entries = make(map[string]*deviceEntry)
	m.Descriptions = 0
	m.Detail = false
	m.Scanning = true
	m.ScanStart = time.Now()
	m.ScanTimeout = m.Searcher.EffectiveTimeout(m.Request.Timeout)
	clearCmd := m.DeviceList.SetItems([]list.Item{})

	send := func(msg tea.Msg) {
		select {
		case events <- msg:
		case <-ctx.Done():
		}
	}

	m.Searcher.Search(ctx, m.Request, discovery.Observer{
		OnDescription: func(ev discovery.DescriptionEvent) {
			send(descriptionMsg{gen: gen, ev: ev})
		},
		OnDevice: func(ev discovery.DeviceEvent) {
			send(deviceFoundMsg{gen: gen, ev: ev})
		},
		OnFinished: func() {
			send(searchDoneMsg{gen: gen})
			close(events)
		},
	})

	return m, tea.Batch(
		clearCmd,
		waitForEvent(events),
		progressTickCmd(gen),
		m.Spinner.Tick,
	)
}

func (m *BrowseModel) cancelSearch() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// addDevice merges a device event into the list
func (m *BrowseModel) addDevice(ev discovery.DeviceEvent) tea.Cmd {
	key := ev.Device.Key()
	if entry, ok := m.entries[key]; ok {
		entry.addSighting(ev)
		return nil
	}

	entry := &deviceEntry{device: ev.Device, location: ev.Location}
	entry.addSighting(ev)
	m.entries[key] = entry

	return m.DeviceList.InsertItem(len(m.DeviceList.Items()), deviceItem{entry: entry})
}

func (m BrowseModel) selectedEntry() *deviceEntry {
	if item, ok := m.DeviceList.SelectedItem().(deviceItem); ok {
		return item.entry
	}
	return nil
}

// SelectedDevice returns the highlighted device, or nil
func (m BrowseModel) SelectedDevice() *description.Device {
	if entry := m.selectedEntry(); entry != nil {
		return entry.device
	}
	return nil
}

// DeviceCount returns the number of distinct devices found so far
func (m BrowseModel) DeviceCount() int {
	return len(m.entries)
}

// Progress returns the fraction of the listen time that has elapsed
func (m BrowseModel) Progress() float64 {
	if !m.Scanning || m.ScanTimeout <= 0 {
		return 1
	}
	p := float64(time.Since(m.ScanStart)) / float64(m.ScanTimeout)
	if p > 1 {
		return 1
	}
	return p
}

func (m BrowseModel) listHeight() int {
	h := m.Height - 14 // Header, status block and footer
	if h < 8 {
		h = 8
	}
	return h
}

// View renders the browse screen
func (m BrowseModel) View() string {
	width := m.Width
	if width == 0 {
		width = MinTerminalWidth
	}

	var content, helpText string
	switch {
	case m.TargetMode:
		content = m.renderTargetEntry()
		helpText = m.Help.View(m.TargetKeys)
	case m.Detail:
		content = lipgloss.NewStyle().Padding(1, 2).Render(m.Viewport.View())
		helpText = m.Help.View(m.DetailKeys)
	default:
		content = lipgloss.JoinVertical(lipgloss.Left, m.renderStatus(width), m.renderDevices())
		helpText = m.Help.View(m.Keys)
	}

	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// renderStatus renders the search target and the progress of the search
func (m BrowseModel) renderStatus(width int) string {
	target := RenderField("  Target", m.Request.ST)

	var status string
	if m.Scanning {
		elapsed := time.Since(m.ScanStart).Truncate(100 * time.Millisecond)
		status = lipgloss.JoinVertical(lipgloss.Left,
			"  "+m.Spinner.View()+" "+SubtitleStyle.Render(fmt.Sprintf("Searching... %s of %s", elapsed, m.ScanTimeout)),
			"  "+m.ProgressBar.ViewAs(m.Progress()),
		)
	} else {
		status = "  " + StatusStyle.Render("Search complete")
	}

	counts := SubtitleStyle.Render(fmt.Sprintf("  %d description(s), %d camera(s)", m.Descriptions, len(m.entries)))

	return lipgloss.NewStyle().Width(width - 4).PaddingTop(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, target, status, counts),
	)
}

// renderDevices renders the device list or an empty-state message
func (m BrowseModel) renderDevices() string {
	if len(m.DeviceList.Items()) > 0 {
		return m.DeviceList.View()
	}
	if m.Scanning {
		return "\n" + RenderSubtitle("  Waiting for replies...")
	}

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(WarningStyle.Render("⚠ No cameras found on your network"))
	b.WriteString("\n\n")
	b.WriteString("  Troubleshooting:\n")
	b.WriteString("    • Ensure the camera is in remote control mode\n")
	b.WriteString("    • Verify you're connected to the camera's Wi-Fi network\n")
	b.WriteString("    • Press 'a' to list every UPnP device that answers\n")
	b.WriteString("    • Press 'r' to search again\n")
	return b.String()
}

// renderTargetEntry renders the search target input
func (m BrowseModel) renderTargetEntry() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(RenderSubtitle("  Enter an SSDP search target (ST)"))
	b.WriteString("\n\n")
	b.WriteString("  " + FocusedInputStyle.Render("ST: "))
	b.WriteString(m.TargetInput.View())
	b.WriteString("\n\n")
	b.WriteString(RenderSubtitle("  e.g. " + ssdp.ScalarWebAPIService))
	b.WriteString("\n")
	return b.String()
}

// renderDetail renders every field and endpoint of a device
func renderDetail(entry *deviceEntry) string {
	dev := entry.device

	lines := []string{
		SelectedItemStyle.Render(entry.name()),
		"",
		RenderField("Model", dev.ModelName),
		RenderField("UDN", dev.UDN),
		RenderField("Location", entry.location),
		RenderField("Seen via", strings.Join(entry.localAddrs, ", ")),
		RenderField("Adapters", strings.Join(entry.adapters, ", ")),
		"",
		SubtitleStyle.Render("Endpoints"),
	}

	types := dev.ServiceTypes()
	if len(types) == 0 {
		lines = append(lines, "  (none)")
	}
	for _, st := range types {
		url, _ := dev.Endpoint(st)
		lines = append(lines, RenderField("  "+st, url))
	}

	return strings.Join(lines, "\n")
}

// waitForEvent delivers the next search event, or nil once the search has
// finished and its channel is closed
func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func progressTickCmd(gen int) tea.Cmd {
	return tea.Tick(progressTick, func(time.Time) tea.Msg {
		return progressTickMsg{gen: gen}
	})
}
