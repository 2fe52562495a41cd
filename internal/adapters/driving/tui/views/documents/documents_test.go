package documents

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// MockDocumentService implements driving.DocumentService for testing.
type MockDocumentService struct {
	ListFunc      func(ctx context.Context, ownerID string) ([]domain.Document, error)
	SummarizeFunc func(ctx context.Context, ownerID, documentID string, model domain.Model, force bool) (string, error)
	DeleteFunc    func(ctx context.Context, ownerID, documentID string) error
}

func (m *MockDocumentService) List(ctx context.Context, ownerID string) ([]domain.Document, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, ownerID)
	}
	return []domain.Document{}, nil
}

func (m *MockDocumentService) Get(_ context.Context, _, _ string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (m *MockDocumentService) Chunks(_ context.Context, _, _ string) ([]domain.Chunk, error) {
	return nil, nil
}

func (m *MockDocumentService) Delete(ctx context.Context, ownerID, documentID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ownerID, documentID)
	}
	return nil
}

func (m *MockDocumentService) Summarize(
	ctx context.Context, ownerID, documentID string, model domain.Model, force bool,
) (string, error) {
	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, ownerID, documentID, model, force)
	}
	return "", nil
}

func (m *MockDocumentService) Entities(_ context.Context, _, _ string, _ domain.Model) (*domain.EntityGraph, error) {
	return &domain.EntityGraph{}, nil
}

func sampleDocs() []domain.Document {
	return []domain.Document{
		{ID: "cats", Title: "All About Cats"},
		{ID: "dogs", Title: "Dogs"},
		{ID: "birds"},
	}
}

func loadedView(t *testing.T, svc *MockDocumentService) *View {
	t.Helper()
	v := NewView(styles.DefaultStyles(), svc, "alice", domain.ModelGeminiPro)
	v.SetDimensions(100, 40)
	v.Update(messages.DocumentsLoaded{Documents: sampleDocs()})
	return v
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewView(t *testing.T) {
	v := NewView(nil, &MockDocumentService{}, "alice", "")

	require.NotNil(t, v)
	assert.NotNil(t, v.styles)
	assert.Empty(t, v.Documents())
	assert.Nil(t, v.SelectedDocument())
}

func TestView_Init_LoadsOwnerDocuments(t *testing.T) {
	var gotOwner string
	svc := &MockDocumentService{
		ListFunc: func(_ context.Context, ownerID string) ([]domain.Document, error) {
			gotOwner = ownerID
			return sampleDocs(), nil
		},
	}
	v := NewView(nil, svc, "alice", "")

	cmd := v.Init()
	require.NotNil(t, cmd)

	msg, ok := cmd().(messages.DocumentsLoaded)
	require.True(t, ok)
	assert.Equal(t, "alice", gotOwner)
	assert.Len(t, msg.Documents, 3)

	v.Update(msg)
	assert.Len(t, v.Documents(), 3)
	assert.NoError(t, v.Err())
}

func TestView_Init_NilService(t *testing.T) {
	v := NewView(nil, nil, "alice", "")

	msg := v.Init()().(messages.DocumentsLoaded)

	assert.Error(t, msg.Err)
}

func TestView_DocumentsLoaded_Error(t *testing.T) {
	v := NewView(nil, &MockDocumentService{}, "alice", "")
	v.SetDimensions(80, 24)

	v.Update(messages.DocumentsLoaded{Err: errors.New("db locked")})

	assert.Error(t, v.Err())
	assert.Contains(t, v.View(), "db locked")
}

func TestView_Navigation(t *testing.T) {
	v := loadedView(t, &MockDocumentService{})

	v.Update(key("down"))
	v.Update(key("j"))
	v.Update(key("j"))
	assert.Equal(t, 2, v.SelectedIndex())

	v.Update(key("up"))
	v.Update(key("k"))
	v.Update(key("k"))
	assert.Equal(t, 0, v.SelectedIndex())
}

func TestView_EnterOpensMenu_AskSelectsDocument(t *testing.T) {
	v := loadedView(t, &MockDocumentService{})
	v.Update(key("j"))

	v.Update(key("enter"))
	require.True(t, v.IsShowingMenu())

	_, cmd := v.Update(key("enter"))
	require.NotNil(t, cmd)
	selected, ok := cmd().(messages.DocumentSelected)
	require.True(t, ok)
	assert.Equal(t, "dogs", selected.Document.ID)
	assert.False(t, v.IsShowingMenu())
}

func TestView_MenuEscCloses(t *testing.T) {
	v := loadedView(t, &MockDocumentService{})

	v.Update(key("enter"))
	v.Update(key("esc"))

	assert.False(t, v.IsShowingMenu())
}

func TestView_Summary(t *testing.T) {
	var gotModel domain.Model
	svc := &MockDocumentService{
		SummarizeFunc: func(_ context.Context, _, id string, model domain.Model, _ bool) (string, error) {
			gotModel = model
			return "Cats are small mammals.", nil
		},
	}
	v := loadedView(t, svc)

	v.Update(key("enter"))
	v.Update(key("down"))
	_, cmd := v.Update(key("enter"))
	require.NotNil(t, cmd)

	v.Update(cmd())

	assert.Equal(t, domain.ModelGeminiPro, gotModel)
	assert.Contains(t, v.View(), "Cats are small mammals.")
}

func TestView_Delete_ReloadsList(t *testing.T) {
	var deleted string
	svc := &MockDocumentService{
		DeleteFunc: func(_ context.Context, _, id string) error {
			deleted = id
			return nil
		},
	}
	v := loadedView(t, svc)

	v.Update(key("enter"))
	v.Update(key("down"))
	v.Update(key("down"))
	_, cmd := v.Update(key("enter"))
	require.NotNil(t, cmd)

	_, reload := v.Update(cmd())

	assert.Equal(t, "cats", deleted)
	assert.NotNil(t, reload)
}

func TestView_EscReturnsToMenu(t *testing.T) {
	v := loadedView(t, &MockDocumentService{})

	_, cmd := v.Update(key("esc"))

	require.NotNil(t, cmd)
	changed, ok := cmd().(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewMenu, changed.View)
}

func TestView_View_EmptyAndTitles(t *testing.T) {
	v := NewView(nil, &MockDocumentService{}, "alice", "")
	v.SetDimensions(80, 24)
	v.Update(messages.DocumentsLoaded{Documents: []domain.Document{}})
	assert.Contains(t, v.View(), "No documents yet")

	v = loadedView(t, &MockDocumentService{})
	out := v.View()
	assert.Contains(t, out, "Documents (3)")
	assert.Contains(t, out, "All About Cats")
	assert.Contains(t, out, "birds", "untitled documents show their id")
}
