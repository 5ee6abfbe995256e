package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	handler "github.com/spine/api/internal/adapters/handler/http"
	"github.com/spine/api/internal/adapters/hash"
	repo "github.com/spine/api/internal/adapters/repository/postgres"
	"github.com/spine/api/internal/adapters/token"
	"github.com/spine/api/internal/core/ports"
	"github.com/spine/api/internal/core/services"
)

const testJWTSecret = "test-secret"

// stubMetadataProvider stands in for the Google Books client so the
// suite stays offline except for the database container.
type stubMetadataProvider struct {
	page *ports.SearchPage
}

func (s *stubMetadataProvider) Search(ctx context.Context, query string, maxResults, startIndex int) (*ports.SearchPage, error) {
	if s.page != nil {
		return s.page, nil
	}
	return &ports.SearchPage{Results: []ports.SearchResult{}}, nil
}

type TestApp struct {
	DB          *sql.DB
	Server      *httptest.Server
	Client      *http.Client
	AuthSvc     *services.AuthService
	DBContainer testcontainers.Container
}

func (app *TestApp) Teardown(t *testing.T) {
	t.Helper()
	app.Server.Close()
	app.DB.Close()
	if err := app.DBContainer.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dirPath, name))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
	}

	return nil
}

func setupTestApp(t *testing.T, metadata ports.BookMetadataProvider) *TestApp {
	t.Helper()
	ctx := context.Background()

	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)

	err = applyMigrations(db)
	require.NoError(t, err)

	userRepo := repo.NewUserRepository(db)
	tokenRepo := repo.NewRefreshTokenRepository(db)
	bookRepo := repo.NewBookRepository(db)
	userBookRepo := repo.NewUserBookRepository(db)
	listRepo := repo.NewListRepository(db)

	codec := token.NewJWTCodec([]byte(testJWTSecret))
	authSvc := services.NewAuthService(userRepo, tokenRepo, codec, hash.NewBcryptHasher())
	userSvc := services.NewUserService(userRepo)
	bookSvc := services.NewBookService(bookRepo, userBookRepo)
	listSvc := services.NewListService(listRepo, bookRepo)
	searchSvc := services.NewSearchService(metadata)

	router := handler.NewHandler(handler.Handlers{
		Auth:   handler.NewAuthHandler(authSvc),
		User:   handler.NewUserHandler(userSvc),
		Book:   handler.NewBookHandler(bookSvc),
		List:   handler.NewListHandler(listSvc),
		Search: handler.NewSearchHandler(searchSvc),
	}, authSvc)

	server := httptest.NewServer(router)

	return &TestApp{
		DB:          db,
		Server:      server,
		Client:      server.Client(),
		AuthSvc:     authSvc,
		DBContainer: dbContainer,
	}
}

func postJSON(t *testing.T, client *http.Client, url, accessToken string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", accessToken)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func patchJSON(t *testing.T, client *http.Client, url, accessToken string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPatch, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", accessToken)

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func deleteReq(t *testing.T, client *http.Client, url, accessToken string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodDelete, url, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", accessToken)

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func getJSON(t *testing.T, client *http.Client, url, accessToken string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if accessToken != "" {
		req.Header.Set("Authorization", accessToken)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func signupUser(t *testing.T, app *TestApp, email, username, password string) (accessToken, refreshToken string) {
	t.Helper()

	resp := postJSON(t, app.Client, app.Server.URL+"/auth/signup", "", map[string]string{
		"email":    email,
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	pair := decodeBody[map[string]string](t, resp)
	require.NotEmpty(t, pair["accessToken"])
	require.NotEmpty(t, pair["refreshToken"])
	return pair["accessToken"], pair["refreshToken"]
}
