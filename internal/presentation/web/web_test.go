package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hilthontt/chatroom/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_RendersEveryPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	user := &domain.User{ID: "u1", Name: "Alice", Username: "alice"}
	room := &domain.Room{ID: "r1", Name: "General"}

	data := map[string]any{
		"home":      []domain.Room{*room},
		"rooms":     []domain.Room{*room},
		"room":      room,
		"room_form": room,
	}

	for _, name := range pages {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			err := r.Render(w, http.StatusOK, name, Page{Title: name, User: user, Data: data[name]})
			require.NoError(t, err)
			assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
			assert.Contains(t, w.Body.String(), "<!DOCTYPE html>")
		})
	}
}

func TestRenderer_EscapesUserContent(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	err = r.Render(w, http.StatusOK, "room", Page{
		Title: "room",
		User:  &domain.User{Name: "Alice"},
		Data:  &domain.Room{ID: "r1", Name: "<script>alert(1)</script>"},
	})
	require.NoError(t, err)
	assert.NotContains(t, w.Body.String(), "<script>alert(1)</script>")
	assert.Contains(t, w.Body.String(), "&lt;script&gt;")
}

func TestRenderer_UnknownPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	assert.Error(t, r.Render(w, http.StatusOK, "missing", Page{}))
	assert.Zero(t, w.Body.Len())
}
