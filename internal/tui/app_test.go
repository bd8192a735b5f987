// ABOUTME: Integration tests for TUI app
// ABOUTME: Tests screen transitions and catalog wiring against the mock store

package tui

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/markalston/dragon-catalog/internal/catalog"
	"github.com/markalston/dragon-catalog/internal/client"
	"github.com/markalston/dragon-catalog/internal/mockapi"
	"github.com/markalston/dragon-catalog/internal/models"
	"github.com/markalston/dragon-catalog/internal/session"
	"github.com/markalston/dragon-catalog/internal/tui/forms"
)

func newTestApp(t *testing.T, token string) (*App, *mockapi.Store) {
	t.Helper()
	store := mockapi.NewStore()
	store.Seed([]models.RecordInput{
		{Name: "Drogon", Type: "Fire"},
		{Name: "Balerion", Type: "Black Dread"},
	})
	server := httptest.NewServer(mockapi.NewServer(store, "").Handler())
	t.Cleanup(server.Close)

	guard, err := session.NewGuard(session.NewMemoryStore(token), nil, nil)
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	svc := catalog.NewService(client.New(server.URL), nil)
	return New(session.WithGuard(context.Background(), guard), svc), store
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAppInitialState_Anonymous(t *testing.T) {
	app, _ := newTestApp(t, "")

	if app.screen != ScreenLogin {
		t.Errorf("expected initial screen to be ScreenLogin, got %d", app.screen)
	}
	if app.login == nil {
		t.Error("expected login form to be initialized")
	}
}

func TestAppInitialState_Authenticated(t *testing.T) {
	app, _ := newTestApp(t, "any-token")

	if app.screen != ScreenList {
		t.Errorf("expected initial screen to be ScreenList, got %d", app.screen)
	}
	if !app.loading {
		t.Error("expected list to start loading")
	}
}

func TestAppWithoutGuardStartsAnonymous(t *testing.T) {
	app := New(context.Background(), catalog.NewService(client.New("http://localhost:8080"), nil))

	if app.screen != ScreenLogin {
		t.Errorf("expected ScreenLogin without a guard, got %d", app.screen)
	}
	if app.guard == nil || app.guard.IsAuthenticated() {
		t.Error("expected an anonymous fallback guard")
	}
}

func TestScreenConstants(t *testing.T) {
	if ScreenLogin != 0 {
		t.Errorf("expected ScreenLogin to be 0, got %d", ScreenLogin)
	}
	if ScreenList != 1 {
		t.Errorf("expected ScreenList to be 1, got %d", ScreenList)
	}
	if ScreenDetail != 2 {
		t.Errorf("expected ScreenDetail to be 2, got %d", ScreenDetail)
	}
}

func TestAppLogin_Success(t *testing.T) {
	app, _ := newTestApp(t, "")

	msg := app.doLogin("admin", "admin")()
	updated, cmd := app.Update(msg)

	result := updated.(*App)
	if result.screen != ScreenList {
		t.Errorf("expected ScreenList after login, got %d", result.screen)
	}
	if !result.guard.IsAuthenticated() {
		t.Error("expected guard to be authenticated")
	}
	if cmd == nil {
		t.Error("expected a command to load records")
	}
}

func TestAppLogin_InvalidCredentials(t *testing.T) {
	app, _ := newTestApp(t, "")

	msg := app.doLogin("admin", "wrong")()
	updated, _ := app.Update(msg)

	result := updated.(*App)
	if result.screen != ScreenLogin {
		t.Errorf("expected to stay on ScreenLogin, got %d", result.screen)
	}
	if !strings.Contains(result.View(), "Invalid username or password") {
		t.Error("expected login error in view")
	}
	if result.guard.IsAuthenticated() {
		t.Error("expected guard to stay anonymous")
	}
}

func TestAppLoadRecords_SortedByName(t *testing.T) {
	app, _ := newTestApp(t, "token")

	updated, _ := app.Update(app.loadRecords()())

	result := updated.(*App)
	if result.loading {
		t.Error("expected loading to finish")
	}
	if len(result.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.records))
	}
	if result.records[0].Name != "Balerion" || result.records[1].Name != "Drogon" {
		t.Errorf("expected Balerion before Drogon, got %s, %s", result.records[0].Name, result.records[1].Name)
	}
	view := result.View()
	if !strings.Contains(view, "Balerion") || !strings.Contains(view, "Drogon") {
		t.Error("expected both names in the table view")
	}
}

func TestAppLoadRecords_RequiresSession(t *testing.T) {
	app, _ := newTestApp(t, "")

	msg := app.loadRecords()().(recordsLoadedMsg)
	if msg.err == nil {
		t.Fatal("expected an error while anonymous")
	}

	app.screen = ScreenList
	updated, _ := app.Update(msg)
	if updated.(*App).screen != ScreenLogin {
		t.Errorf("expected ScreenLogin after losing the session, got %d", updated.(*App).screen)
	}
}

func TestAppCreate_RefreshesList(t *testing.T) {
	app, _ := newTestApp(t, "token")
	app.Update(app.loadRecords()())

	saved := app.createRecord(models.RecordInput{Name: "Aegon", Type: "Gold"})()
	_, cmd := app.Update(saved)
	if cmd == nil {
		t.Fatal("expected a reload command after create")
	}
	app.Update(cmd())

	if len(app.records) != 3 {
		t.Fatalf("expected 3 records after create, got %d", len(app.records))
	}
	if app.records[0].Name != "Aegon" {
		t.Errorf("expected Aegon first, got %s", app.records[0].Name)
	}
	if !strings.Contains(app.status, "Created Aegon") {
		t.Errorf("expected status to mention the new record, got %q", app.status)
	}
}

func TestAppUpdate_RefreshesList(t *testing.T) {
	app, store := newTestApp(t, "token")
	app.Update(app.loadRecords()())
	id := store.List()[0].ID

	saved := app.updateRecord(id, models.NewPatch("", "Ice"))()
	_, cmd := app.Update(saved)
	app.Update(cmd())

	for _, r := range app.records {
		if r.ID == id && r.Type != "Ice" {
			t.Errorf("expected updated type Ice, got %s", r.Type)
		}
	}
}

func TestAppDelete_RefreshesList(t *testing.T) {
	app, store := newTestApp(t, "token")
	app.Update(app.loadRecords()())
	id := store.List()[0].ID

	_, cmd := app.Update(app.deleteRecord(id)())
	app.Update(cmd())

	if len(app.records) != 1 {
		t.Fatalf("expected 1 record after delete, got %d", len(app.records))
	}
	if app.records[0].ID == id {
		t.Error("expected deleted record to be gone")
	}
}

func TestAppSaveError_ShowsMessage(t *testing.T) {
	app, _ := newTestApp(t, "token")
	app.Update(app.loadRecords()())

	msg := app.updateRecord("999", models.NewPatch("Ghost", ""))()
	updated, _ := app.Update(msg)

	result := updated.(*App)
	if result.err == nil {
		t.Fatal("expected an error for a missing record")
	}
	if !strings.Contains(result.View(), "Error:") {
		t.Error("expected error in view")
	}
}

func TestAppNewKeyOpensForm(t *testing.T) {
	app, _ := newTestApp(t, "token")
	app.Update(app.loadRecords()())

	app.Update(keyMsg("n"))
	if app.screen != ScreenForm {
		t.Fatalf("expected ScreenForm, got %d", app.screen)
	}
	if app.form == nil || app.form.Editing() {
		t.Error("expected a create form")
	}

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected cancel command from esc")
	}
	if _, ok := cmd().(forms.CancelledMsg); !ok {
		t.Fatal("expected CancelledMsg")
	}
	app.Update(forms.CancelledMsg{})
	if app.screen != ScreenList {
		t.Errorf("expected ScreenList after cancel, got %d", app.screen)
	}
}

func TestAppDeleteKeyOpensConfirm(t *testing.T) {
	app, _ := newTestApp(t, "token")
	app.Update(app.loadRecords()())

	app.Update(keyMsg("d"))
	if app.screen != ScreenConfirm {
		t.Fatalf("expected ScreenConfirm, got %d", app.screen)
	}

	app.Update(forms.DeleteConfirmedMsg{ID: app.records[0].ID})
	if app.screen != ScreenList {
		t.Errorf("expected ScreenList after confirm, got %d", app.screen)
	}
	if !app.loading {
		t.Error("expected delete to be in flight")
	}
}

func TestAppDetailScreen(t *testing.T) {
	app, _ := newTestApp(t, "token")
	app.Update(app.loadRecords()())

	msg := app.loadRecord(app.records[0].ID)()
	app.Update(msg)
	if app.screen != ScreenDetail {
		t.Fatalf("expected ScreenDetail, got %d", app.screen)
	}
	if !strings.Contains(app.View(), "Balerion") {
		t.Error("expected record name in detail view")
	}

	app.Update(keyMsg("b"))
	if app.screen != ScreenList {
		t.Errorf("expected ScreenList after back, got %d", app.screen)
	}
}

func TestAppLogout(t *testing.T) {
	app, _ := newTestApp(t, "token")
	app.Update(app.loadRecords()())

	updated, _ := app.Update(app.doLogout()())

	result := updated.(*App)
	if result.screen != ScreenLogin {
		t.Errorf("expected ScreenLogin after logout, got %d", result.screen)
	}
	if result.guard.IsAuthenticated() {
		t.Error("expected guard to be anonymous")
	}
	if len(result.records) != 0 {
		t.Error("expected records to be cleared")
	}
}

func TestAppCtrlCQuits(t *testing.T) {
	app, _ := newTestApp(t, "token")

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-03-01T10:00:00Z", "2024-03-01"},
		{"2024-03-01", "2024-03-01"},
		{"yesterday", "yesterday"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := formatDate(tt.in); got != tt.want {
			t.Errorf("formatDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
