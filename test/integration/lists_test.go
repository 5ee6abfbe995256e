package integration

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createBook(t *testing.T, app *TestApp, access, title string) string {
	t.Helper()

	resp := postJSON(t, app.Client, app.Server.URL+"/api/books", access, map[string]any{
		"title": title,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	book := decodeBody[map[string]any](t, resp)
	return book["id"].(string)
}

func TestListLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	app := setupTestApp(t, &stubMetadataProvider{})
	defer app.Teardown(t)

	access, _ := signupUser(t, app, "lists@example.com", "lists", "s3cretpass")

	resp := postJSON(t, app.Client, app.Server.URL+"/api/lists", access, map[string]string{
		"title":       "To Read",
		"description": "queue for the year",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	list := decodeBody[map[string]any](t, resp)
	listID := list["id"].(string)
	assert.Equal(t, "To Read", list["title"])

	bookID := createBook(t, app, access, "Listed Book")

	resp = postJSON(t, app.Client, app.Server.URL+"/api/lists/"+listID+"/books", access, map[string]string{
		"bookId": bookID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = getJSON(t, app.Client, app.Server.URL+"/api/lists/"+listID, access)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decodeBody[struct {
		ID    string           `json:"id"`
		Books []map[string]any `json:"books"`
	}](t, resp)
	require.Len(t, fetched.Books, 1)
	assert.Equal(t, "Listed Book", fetched.Books[0]["title"])

	resp = deleteReq(t, app.Client, app.Server.URL+"/api/lists/"+listID+"/books/"+bookID, access)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = getJSON(t, app.Client, app.Server.URL+"/api/lists/"+listID, access)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	emptied := decodeBody[struct {
		Books []map[string]any `json:"books"`
	}](t, resp)
	assert.Empty(t, emptied.Books)
}

func TestGetMyListsOnlyReturnsOwn(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	app := setupTestApp(t, &stubMetadataProvider{})
	defer app.Teardown(t)

	aliceAccess, _ := signupUser(t, app, "alice@example.com", "alice", "s3cretpass")
	bobAccess, _ := signupUser(t, app, "bob@example.com", "bob", "s3cretpass")

	resp := postJSON(t, app.Client, app.Server.URL+"/api/lists", aliceAccess, map[string]string{
		"title": "Alice's List",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	aliceList := decodeBody[map[string]any](t, resp)

	resp = getJSON(t, app.Client, app.Server.URL+"/api/lists", bobAccess)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bobLists := decodeBody[[]map[string]any](t, resp)
	assert.Empty(t, bobLists)

	// foreign lists are indistinguishable from missing ones
	resp = getJSON(t, app.Client, app.Server.URL+"/api/lists/"+aliceList["id"].(string), bobAccess)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestGetUnknownListReturns404(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	app := setupTestApp(t, &stubMetadataProvider{})
	defer app.Teardown(t)

	access, _ := signupUser(t, app, "nolist@example.com", "nolist", "s3cretpass")

	resp := getJSON(t, app.Client, app.Server.URL+"/api/lists/"+uuid.NewString(), access)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
