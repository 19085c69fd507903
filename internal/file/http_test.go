package file

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newPublicRouter(gateway *Gateway) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterPublicRoutes(router.Group("/public"), gateway)
	return router
}

func TestPublicViewStreamsInline(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeObjectStore()
	manager, gateway := newTestGateway(repo, store)

	content := []byte("public syllabus body")
	stored, err := manager.Store(context.Background(), StoreInput{
		Reader:       bytes.NewReader(content),
		OriginalName: "syllabus.txt",
		DeclaredMIME: "text/plain",
		DeclaredSize: int64(len(content)),
		OwnerID:      uuid.New(),
	})
	if err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	router := newPublicRouter(gateway)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public/files/"+stored.StorageKey+"/view", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !bytes.Equal(w.Body.Bytes(), content) {
		t.Fatalf("body mismatch")
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/plain" {
		t.Fatalf("unexpected content type: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "inline;") {
		t.Fatalf("expected inline disposition, got %q", cd)
	}
}

func TestPublicDownloadSetsAttachmentDisposition(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeObjectStore()
	manager, gateway := newTestGateway(repo, store)

	stored, err := manager.Store(context.Background(), StoreInput{
		Reader:       strings.NewReader("csv,data"),
		OriginalName: "enroll\"ments\r\n.csv",
		DeclaredMIME: "text/csv",
		DeclaredSize: 8,
		OwnerID:      uuid.New(),
	})
	if err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	router := newPublicRouter(gateway)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public/files/"+stored.StorageKey+"/download", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	cd := w.Header().Get("Content-Disposition")
	if !strings.HasPrefix(cd, "attachment;") {
		t.Fatalf("expected attachment disposition, got %q", cd)
	}
	if strings.ContainsAny(cd, "\r\n") {
		t.Fatalf("disposition must not carry CRLF from the original name: %q", cd)
	}
}

func TestPublicRouteHidesPrivateFiles(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeObjectStore()
	manager, gateway := newTestGateway(repo, store)

	private := false
	stored, err := manager.Store(context.Background(), StoreInput{
		Reader:       strings.NewReader("draft"),
		OriginalName: "draft.txt",
		DeclaredMIME: "text/plain",
		DeclaredSize: 5,
		OwnerID:      uuid.New(),
		IsPublic:     &private,
	})
	if err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	router := newPublicRouter(gateway)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public/files/"+stored.StorageKey+"/view", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for private file, got %d", w.Code)
	}

	meta, _ := repo.Get(context.Background(), stored.ID)
	if meta.AccessCount != 0 {
		t.Fatalf("denied reads must not increment the counter")
	}
}

func TestPublicViewMidStreamFailureKeepsResponse(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeObjectStore()
	manager, gateway := newTestGateway(repo, store)

	content := []byte("0123456789abcdef")
	stored, err := manager.Store(context.Background(), StoreInput{
		Reader:       bytes.NewReader(content),
		OriginalName: "lecture.txt",
		DeclaredMIME: "text/plain",
		DeclaredSize: int64(len(content)),
		OwnerID:      uuid.New(),
	})
	if err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	store.readErr = errors.New("connection reset by peer")
	router := newPublicRouter(gateway)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public/files/"+stored.StorageKey+"/view", nil)
	router.ServeHTTP(w, req)

	// Headers go out before the copy fails; the handler must neither
	// panic nor append an error payload to the truncated body.
	if w.Code != http.StatusOK {
		t.Fatalf("expected the already-sent 200, got %d", w.Code)
	}
	if !bytes.Equal(w.Body.Bytes(), content[:len(content)/2]) {
		t.Fatalf("expected only the bytes written before the failure, got %q", w.Body.String())
	}
}

func TestPublicRouteUnknownKey(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeObjectStore()
	_, gateway := newTestGateway(repo, store)

	router := newPublicRouter(gateway)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public/files/no-such-key/view", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
