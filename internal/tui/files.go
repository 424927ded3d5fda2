package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-drive-client/internal/service"
	"github.com/MKhiriev/go-drive-client/models"
)

type filesMode int

const (
	filesBrowse filesMode = iota
	filesNewFolder
	filesUpload
	filesConfirmDelete
)

// fileRow is one line of the listing: a folder, a file inside the folder
// above it, or a root file.
type fileRow struct {
	item models.Item
	// folderID is the folder a new upload goes to when the row is selected.
	folderID string
	size     int64
	nested   bool
}

// buildRows flattens the snapshot: every folder followed by its files, then
// the root files.
func buildRows(snap models.Snapshot) []fileRow {
	rows := make([]fileRow, 0, len(snap.Folders)+len(snap.Files))
	for _, folder := range snap.Folders {
		rows = append(rows, fileRow{item: folder.Item(), folderID: folder.ID})
		for _, f := range folder.Files {
			rows = append(rows, fileRow{item: f.Item(), folderID: folder.ID, size: f.Size, nested: true})
		}
	}
	for _, f := range snap.Files {
		rows = append(rows, fileRow{item: f.Item(), size: f.Size})
	}
	return rows
}

type filesModel struct {
	env *env

	mode    filesMode
	idx     int
	loading bool
	busy    string
	input   textinput.Model
	// uploadFolder is the target chosen when the upload prompt opened.
	uploadFolder string
	pending      fileRow

	uploads map[string]models.UploadTask
	bar     progress.Model
}

func newFilesModel(e *env) *filesModel {
	in := newInput("", 4096, false)
	return &filesModel{
		env:     e,
		input:   in,
		uploads: make(map[string]models.UploadTask),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
	}
}

func (m *filesModel) Init() tea.Cmd {
	m.mode = filesBrowse
	m.loading = true
	return m.cmdRefresh()
}

func (m *filesModel) rows() []fileRow {
	return buildRows(m.env.services.Resources.Snapshot())
}

func (m *filesModel) selected() (fileRow, bool) {
	rows := m.rows()
	if m.idx < 0 || m.idx >= len(rows) {
		return fileRow{}, false
	}
	return rows[m.idx], true
}

func (m *filesModel) clampCursor() {
	n := len(m.rows())
	if m.idx >= n {
		m.idx = n - 1
	}
	if m.idx < 0 {
		m.idx = 0
	}
}

func (m *filesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotRefreshedMsg:
		m.loading = false
		m.clampCursor()
		return m, reauthOn(msg.err)

	case opDoneMsg:
		m.busy = ""
		m.clampCursor()
		return m, reauthOn(msg.err)

	case uploadStartedMsg:
		return m, waitUpload(msg.updates)

	case uploadProgressMsg:
		m.uploads[msg.task.ID] = msg.task
		var cmd tea.Cmd
		if msg.task.Status == models.UploadFailed {
			cmd = reauthOn(msg.task.Err)
		}
		return m, tea.Batch(cmd, waitUpload(msg.updates))

	case uploadFinishedMsg:
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case filesNewFolder, filesUpload:
			return m.updatePrompt(msg)
		case filesConfirmDelete:
			return m.updateConfirm(msg)
		}
		return m.updateBrowse(msg)
	}

	if m.mode == filesNewFolder || m.mode == filesUpload {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *filesModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.esc):
		return m, navigate(pageHome)
	case key.Matches(msg, keys.up):
		if m.idx > 0 {
			m.idx--
		}
	case key.Matches(msg, keys.down):
		if m.idx < len(m.rows())-1 {
			m.idx++
		}
	case key.Matches(msg, keys.refresh):
		m.loading = true
		return m, m.cmdRefresh()
	case key.Matches(msg, keys.newFolder):
		return m, m.openPrompt(filesNewFolder, "folder name", "")
	case key.Matches(msg, keys.upload):
		target := ""
		if row, ok := m.selected(); ok {
			target = row.folderID
		}
		return m, m.openPrompt(filesUpload, "path to file", target)
	case key.Matches(msg, keys.delete):
		if row, ok := m.selected(); ok {
			m.pending = row
			m.mode = filesConfirmDelete
		}
	case key.Matches(msg, keys.copyLink):
		if row, ok := m.selected(); ok {
			m.copyLink(row.item)
		}
	case key.Matches(msg, keys.download):
		if row, ok := m.selected(); ok && m.busy == "" {
			m.busy = "Downloading " + row.item.Name + "..."
			return m, m.cmdDownload(row.item)
		}
	}
	return m, nil
}

func (m *filesModel) openPrompt(mode filesMode, placeholder, folderID string) tea.Cmd {
	m.mode = mode
	m.uploadFolder = folderID
	m.input.Reset()
	m.input.Placeholder = placeholder
	return m.input.Focus()
}

func (m *filesModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.esc):
		m.mode = filesBrowse
		m.input.Blur()
		return m, nil
	case key.Matches(msg, keys.enter):
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = filesBrowse
		m.input.Blur()
		if value == "" {
			return m, nil
		}
		if mode == filesNewFolder {
			m.busy = "Creating folder..."
			return m, m.cmdCreateFolder(value)
		}
		m.clearSettledUploads()
		return m, m.cmdUpload(value, m.uploadFolder)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *filesModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.yes):
		m.mode = filesBrowse
		m.busy = "Deleting " + m.pending.item.Name + "..."
		return m, m.cmdDelete(m.pending.item)
	case key.Matches(msg, keys.no), key.Matches(msg, keys.esc):
		m.mode = filesBrowse
		m.pending = fileRow{}
	}
	return m, nil
}

func (m *filesModel) copyLink(item models.Item) {
	notes := m.env.services.Notifications
	if item.UniqueLinkURL == "" {
		notes.Error("This item has no share link")
		return
	}
	if err := clipboard.WriteAll(item.UniqueLinkURL); err != nil {
		m.env.logger.Err(err).Str("func", "filesModel.copyLink").Msg("clipboard write failed")
		notes.Error("Could not copy the share link")
		return
	}
	notes.Success("Share link copied to clipboard")
}

func (m *filesModel) clearSettledUploads() {
	for id, task := range m.uploads {
		if task.Settled() {
			delete(m.uploads, id)
		}
	}
}

func (m *filesModel) View() string {
	if m.mode == filesConfirmDelete {
		return renderPage("FILES", confirmModel{message: m.pending.item.Name}.View(), "y: delete │ n/esc: cancel")
	}

	snap := m.env.services.Resources.Snapshot()
	var b strings.Builder

	if snap.StorageLoaded {
		fmt.Fprintf(&b, "Used %s of %s\n\n", snap.Storage.Used, snap.Storage.Total)
	}

	rows := buildRows(snap)
	switch {
	case m.loading && !snap.ListingLoaded:
		b.WriteString("Loading...\n")
	case len(rows) == 0:
		b.WriteString("No files yet. Press u to upload or n to create a folder.\n")
	}
	for i, row := range rows {
		b.WriteString(cursor(i == m.idx))
		b.WriteString(" ")
		switch {
		case row.item.Kind == models.ItemKindFolder:
			b.WriteString("▸ " + fitText(row.item.Name, 50) + "/")
		case row.nested:
			fmt.Fprintf(&b, "    %s  %s", fitText(row.item.Name, 46), helpStyle.Render(humanBytes(row.size)))
		default:
			fmt.Fprintf(&b, "  %s  %s", fitText(row.item.Name, 48), helpStyle.Render(humanBytes(row.size)))
		}
		b.WriteString("\n")
	}

	if len(m.uploads) > 0 {
		b.WriteString("\nUploads\n")
		for _, task := range sortedUploads(m.uploads) {
			fmt.Fprintf(&b, "%s %s %s\n", fitText(task.Filename, 24), m.bar.ViewAs(task.Percent()/100), uploadStatus(task))
		}
	}

	switch m.mode {
	case filesNewFolder:
		b.WriteString("\nNew folder: [" + m.input.View() + "]\n")
	case filesUpload:
		target := "root"
		if m.uploadFolder != "" {
			if f, ok := folderName(snap, m.uploadFolder); ok {
				target = f
			}
		}
		b.WriteString("\nUpload to " + target + ": [" + m.input.View() + "]\n")
	}

	if m.busy != "" {
		b.WriteString("\n" + m.busy + "\n")
	}

	hotKeys := "↑/↓: select │ u: upload │ n: new folder │ d: delete │ c: copy link │ s: download │ r: refresh │ esc: back"
	if m.mode == filesNewFolder || m.mode == filesUpload {
		hotKeys = "enter: confirm │ esc: cancel"
	}
	return renderPage("FILES", strings.TrimRight(b.String(), "\n"), hotKeys)
}

func folderName(snap models.Snapshot, id string) (string, bool) {
	for _, f := range snap.Folders {
		if f.ID == id {
			return f.Name, true
		}
	}
	return "", false
}

func sortedUploads(uploads map[string]models.UploadTask) []models.UploadTask {
	out := make([]models.UploadTask, 0, len(uploads))
	for _, t := range uploads {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func uploadStatus(task models.UploadTask) string {
	switch task.Status {
	case models.UploadCompleted:
		return "done"
	case models.UploadFailed:
		return errorStyle.Render("failed")
	default:
		return fmt.Sprintf("%s / %s", humanBytes(task.BytesTransferred), humanBytes(task.BytesTotal))
	}
}

func (m *filesModel) cmdRefresh() tea.Cmd {
	ctx := m.env.ctx
	resources := m.env.services.Resources
	return func() tea.Msg {
		return snapshotRefreshedMsg{err: resources.RefreshAll(ctx, service.CategoryStorage, service.CategoryListing)}
	}
}

func (m *filesModel) cmdCreateFolder(name string) tea.Cmd {
	ctx := m.env.ctx
	resources := m.env.services.Resources
	return func() tea.Msg {
		_, err := resources.CreateFolder(ctx, name)
		return opDoneMsg{op: "create_folder", err: err}
	}
}

func (m *filesModel) cmdDelete(item models.Item) tea.Cmd {
	ctx := m.env.ctx
	resources := m.env.services.Resources
	return func() tea.Msg {
		return opDoneMsg{op: "delete", err: resources.DeleteItem(ctx, item.ID, item.Kind)}
	}
}

// cmdDownload saves the item into the download directory. Folders are
// saved as <name>.zip.
func (m *filesModel) cmdDownload(item models.Item) tea.Cmd {
	ctx := m.env.ctx
	resources := m.env.services.Resources
	notes := m.env.services.Notifications
	dir := m.env.downloadDir

	name := filepath.Base(item.Name)
	if item.Kind == models.ItemKindFolder {
		name += ".zip"
	}
	path := filepath.Join(dir, name)

	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			notes.Error("Cannot create " + path)
			return opDoneMsg{op: "download", err: err}
		}

		_, err = resources.DownloadItem(ctx, item, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
		return opDoneMsg{op: "download", err: err}
	}
}

// cmdUpload opens path and starts the upload in the background. The
// returned channel holds only the latest task state: a newer update
// replaces an unread one, so the upload never waits on the view.
func (m *filesModel) cmdUpload(path, folderID string) tea.Cmd {
	ctx := m.env.ctx
	resources := m.env.services.Resources
	notes := m.env.services.Notifications

	return func() tea.Msg {
		file, f, err := models.OpenUploadFile(path)
		if err != nil {
			notes.Error("Cannot open " + path)
			return opDoneMsg{op: "upload", err: err}
		}

		updates := make(chan models.UploadTask, 1)
		publish := func(task models.UploadTask) {
			select {
			case <-updates:
			default:
			}
			updates <- task
		}
		go func() {
			defer close(updates)
			defer f.Close()
			_, _ = resources.UploadFile(ctx, file, folderID, publish)
		}()
		return uploadStartedMsg{updates: updates}
	}
}

func waitUpload(updates <-chan models.UploadTask) tea.Cmd {
	return func() tea.Msg {
		task, ok := <-updates
		if !ok {
			return uploadFinishedMsg{}
		}
		return uploadProgressMsg{task: task, updates: updates}
	}
}
