package http

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-folio/internal/admin"
	"github.com/goliatone/go-folio/internal/audit"
	"github.com/goliatone/go-folio/internal/auth"
	"github.com/goliatone/go-folio/internal/blog"
	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/experience"
	"github.com/goliatone/go-folio/internal/locales"
	"github.com/goliatone/go-folio/internal/media"
	"github.com/goliatone/go-folio/internal/profile"
	"github.com/goliatone/go-folio/internal/projects"
	"github.com/goliatone/go-folio/internal/site"
	"github.com/goliatone/go-folio/internal/skills"
	"github.com/goliatone/go-folio/internal/testimonials"
	"github.com/goliatone/go-folio/internal/users"
	"github.com/goliatone/go-folio/pkg/testsupport"
)

const testSecret = "0123456789abcdef0123456789abcdef-test"

type testServices struct {
	services admin.Services
	recorder audit.Recorder
	mediaDir string
}

func setupAPI(t *testing.T) (http.Handler, testServices) {
	t.Helper()
	db := testsupport.NewBunDB(t)
	localeRepo := testsupport.SeedLocales(t, db)
	mediaDir := t.TempDir()

	svc := admin.Services{
		Profile:      profile.NewService(profile.NewBunProfileRepository(db), localeRepo),
		Skills:       skills.NewService(skills.NewBunSkillRepository(db), localeRepo),
		Experience:   experience.NewService(experience.NewBunExperienceRepository(db), localeRepo),
		Projects:     projects.NewService(projects.NewBunProjectRepository(db), localeRepo),
		Blog:         blog.NewService(blog.NewBunPostRepository(db), localeRepo),
		Testimonials: testimonials.NewService(testimonials.NewBunTestimonialRepository(db), localeRepo),
		Media:        media.NewService(media.NewBunAssetRepository(db), media.NewFSStore(mediaDir)),
		Users:        users.NewService(users.NewBunUserRepository(db), users.WithBcryptCost(bcrypt.MinCost)),
		Locales:      locales.NewService(localeRepo),
	}
	recorder := audit.NewRecorder(audit.NewBunEntryRepository(db))

	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{Secret: testSecret, Issuer: "folio", TTL: time.Hour})
	if err != nil {
		t.Fatalf("token issuer: %v", err)
	}
	manager := auth.NewManager(svc.Users, tokens)

	siteSvc := site.NewService(site.Services{
		Locales:      svc.Locales,
		Profile:      svc.Profile,
		Skills:       svc.Skills,
		Experience:   svc.Experience,
		Projects:     svc.Projects,
		Blog:         svc.Blog,
		Testimonials: svc.Testimonials,
	}, site.WithBaseURL("https://example.com"))

	handler, err := NewHandler(HandlerConfig{
		Admin: NewAdminAPI(
			WithActions(admin.NewActions(svc, admin.Config{Recorder: recorder})),
			WithServices(svc),
			WithAuth(manager),
			WithRecorder(recorder),
		),
		Public: NewPublicAPI(siteSvc, svc.Locales,
			WithMediaFiles(mediaDir, "/media"),
			WithHealthCheck(func(ctx context.Context) error { return db.PingContext(ctx) }),
		),
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	return handler, testServices{services: svc, recorder: recorder, mediaDir: mediaDir}
}

func createUser(t *testing.T, svc testServices, email string, role domain.Role) {
	t.Helper()
	if _, err := svc.services.Users.Create(context.Background(), users.CreateUserRequest{
		Email:    email,
		Password: "password-1",
		Role:     role,
	}); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
}

func login(t *testing.T, handler http.Handler, email string) string {
	t.Helper()
	rec := doJSONRequest(t, handler, http.MethodPost, "/admin/api/auth/login", "",
		map[string]any{"email": email, "password": "password-1"}, http.StatusOK)
	var resp loginResponse
	decodeJSONBody(t, rec, &resp)
	if resp.Token == "" {
		t.Fatalf("expected token for %s", email)
	}
	return resp.Token
}

func TestAdminAPI_LoginSessionLifecycle(t *testing.T) {
	handler, svc := setupAPI(t)
	createUser(t, svc, "admin@example.com", domain.RoleAdmin)

	doJSONRequest(t, handler, http.MethodPost, "/admin/api/auth/login", "",
		map[string]any{"email": "admin@example.com", "password": "wrong-password"}, http.StatusUnauthorized)

	rec := doJSONRequest(t, handler, http.MethodPost, "/admin/api/auth/login", "",
		map[string]any{"email": "Admin@Example.com ", "password": "password-1"}, http.StatusOK)
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 || cookies[0].Name != auth.CookieName || !cookies[0].HttpOnly {
		t.Fatalf("expected http-only session cookie, got %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/api/auth/me", nil)
	req.AddCookie(cookies[0])
	me := httptest.NewRecorder()
	handler.ServeHTTP(me, req)
	if me.Code != http.StatusOK {
		t.Fatalf("expected 200 from me with cookie got %d (%s)", me.Code, me.Body.String())
	}
	var session auth.Session
	decodeJSONBody(t, me, &session)
	if session.Email != "admin@example.com" || session.Role != domain.RoleAdmin {
		t.Fatalf("unexpected session %+v", session)
	}

	var token loginResponse
	decodeJSONBody(t, rec, &token)
	doJSONRequest(t, handler, http.MethodPost, "/admin/api/auth/logout", token.Token, nil, http.StatusNoContent)

	entries, _, err := svc.recorder.List(context.Background(), audit.Filter{Resource: "session"})
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	outcomes := map[string]int{}
	for _, entry := range entries {
		outcomes[entry.Action+":"+string(entry.Outcome)]++
	}
	if outcomes["auth.login:denied"] != 1 || outcomes["auth.login:success"] != 1 || outcomes["auth.logout:success"] != 1 {
		t.Fatalf("unexpected session audit %v", outcomes)
	}
}

func TestAdminAPI_RequiresSession(t *testing.T) {
	handler, _ := setupAPI(t)

	doJSONRequest(t, handler, http.MethodGet, "/admin/api/auth/me", "", nil, http.StatusUnauthorized)
	doJSONRequest(t, handler, http.MethodGet, "/admin/api/posts", "", nil, http.StatusUnauthorized)
	rec := doJSONRequest(t, handler, http.MethodPost, "/admin/api/posts", "not-a-token", map[string]any{
		"translations": []map[string]any{{"locale": "en", "title": "Nope"}},
	}, http.StatusUnauthorized)

	var payload errorResponse
	decodeJSONBody(t, rec, &payload)
	if payload.Error != "unauthenticated" {
		t.Fatalf("expected unauthenticated error got %+v", payload)
	}
}

func TestAdminAPI_EditorPostLifecycle(t *testing.T) {
	handler, svc := setupAPI(t)
	createUser(t, svc, "editor@example.com", domain.RoleEditor)
	token := login(t, handler, "editor@example.com")

	createResp := doJSONRequest(t, handler, http.MethodPost, "/admin/api/posts", token, map[string]any{
		"tags": []string{"go", "i18n"},
		"translations": []map[string]any{
			{"locale": "en", "title": "Hello World", "body": paragraph("Hello there")},
			{"locale": "ar", "title": "مرحبا", "body": paragraph("أهلا")},
		},
	}, http.StatusCreated)
	var created blog.Post
	decodeJSONBody(t, createResp, &created)
	if created.Slug != "hello-world" || created.Status != domain.StatusDraft {
		t.Fatalf("unexpected post %+v", created)
	}

	postPath := "/admin/api/posts/" + created.ID.String()
	publishResp := doJSONRequest(t, handler, http.MethodPost, postPath+"/publish", token, nil, http.StatusOK)
	var published blog.Post
	decodeJSONBody(t, publishResp, &published)
	if published.Status != domain.StatusPublished || published.PublishedAt == nil {
		t.Fatalf("expected published post got %+v", published)
	}
	doJSONRequest(t, handler, http.MethodPost, postPath+"/publish", token, nil, http.StatusConflict)

	listResp := doJSONRequest(t, handler, http.MethodGet, "/admin/api/posts?tag=go", token, nil, http.StatusOK)
	var list listResponse[*blog.Post]
	decodeJSONBody(t, listResp, &list)
	if list.Total != 1 || len(list.Items) != 1 {
		t.Fatalf("expected one tagged post got %+v", list)
	}

	doJSONRequest(t, handler, http.MethodGet, "/admin/api/users", token, nil, http.StatusForbidden)
	doJSONRequest(t, handler, http.MethodPost, "/admin/api/users", token, map[string]any{
		"email": "new@example.com", "password": "password-2",
	}, http.StatusForbidden)

	doJSONRequest(t, handler, http.MethodDelete, postPath, token, nil, http.StatusNoContent)
	doJSONRequest(t, handler, http.MethodGet, postPath, token, nil, http.StatusNotFound)
	doJSONRequest(t, handler, http.MethodGet, "/admin/api/posts/not-a-uuid", token, nil, http.StatusBadRequest)
}

func TestAdminAPI_ValidationErrors(t *testing.T) {
	handler, svc := setupAPI(t)
	createUser(t, svc, "admin@example.com", domain.RoleAdmin)
	token := login(t, handler, "admin@example.com")

	rec := doJSONRequest(t, handler, http.MethodPost, "/admin/api/testimonials", token, map[string]any{
		"author_name": "Omar",
		"rating":      9,
	}, http.StatusUnprocessableEntity)
	var payload errorResponse
	decodeJSONBody(t, rec, &payload)
	if payload.Error != "validation_failed" {
		t.Fatalf("expected validation_failed got %+v", payload)
	}

	doJSONRequest(t, handler, http.MethodPost, "/admin/api/projects", token, map[string]any{
		"translations": []map[string]any{{"locale": "fr", "title": "Unknown locale"}},
	}, http.StatusUnprocessableEntity)

	req := httptest.NewRequest(http.MethodPost, "/admin/api/projects", strings.NewReader("{broken"))
	req.Header.Set("Authorization", "Bearer "+token)
	bad := httptest.NewRecorder()
	handler.ServeHTTP(bad, req)
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed json got %d", bad.Code)
	}
}

func TestAdminAPI_MediaUpload(t *testing.T) {
	handler, svc := setupAPI(t)
	createUser(t, svc, "editor@example.com", domain.RoleEditor)
	token := login(t, handler, "editor@example.com")

	var img bytes.Buffer
	if err := png.Encode(&img, image.NewGray(image.Rect(0, 0, 4, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	rec := doMultipart(t, handler, token, "pixel.png", img.Bytes(), "A grey pixel")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", rec.Code, rec.Body.String())
	}
	var asset media.Asset
	decodeJSONBody(t, rec, &asset)
	if asset.MimeType != "image/png" || asset.Width == nil || *asset.Width != 4 || asset.AltText != "A grey pixel" {
		t.Fatalf("unexpected asset %+v", asset)
	}

	rejected := doMultipart(t, handler, token, "notes.txt", []byte("plain text"), "")
	if rejected.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415 for text upload got %d (%s)", rejected.Code, rejected.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/api/media", strings.NewReader(""))
	req.Header.Set("Authorization", "Bearer "+token)
	missing := httptest.NewRecorder()
	handler.ServeHTTP(missing, req)
	if missing.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without file part got %d", missing.Code)
	}
}

func TestAdminAPI_PreviewRendersMarkdown(t *testing.T) {
	handler, svc := setupAPI(t)
	createUser(t, svc, "editor@example.com", domain.RoleEditor)
	token := login(t, handler, "editor@example.com")

	rec := doJSONRequest(t, handler, http.MethodPost, "/admin/api/preview", token, map[string]any{
		"markdown": "# Title\n\nSome **bold** words.",
	}, http.StatusOK)
	var preview previewResponse
	decodeJSONBody(t, rec, &preview)
	if !strings.Contains(preview.HTML, "<strong>bold</strong>") || preview.Words == 0 {
		t.Fatalf("unexpected preview %+v", preview)
	}

	doJSONRequest(t, handler, http.MethodPost, "/admin/api/preview", token, map[string]any{}, http.StatusBadRequest)
}

func TestPublicAPI_SiteEndpoints(t *testing.T) {
	handler, svc := setupAPI(t)
	ctx := context.Background()

	if _, err := svc.services.Profile.Upsert(ctx, profile.UpsertProfileRequest{
		Email: "dev@example.com",
		Translations: []profile.ProfileTranslationInput{
			{Locale: "en", FullName: "Sara Haddad"},
			{Locale: "ar", FullName: "سارة حداد"},
		},
	}); err != nil {
		t.Fatalf("profile: %v", err)
	}
	post, err := svc.services.Blog.Create(ctx, blog.CreatePostRequest{
		Status: "published",
		Translations: []blog.PostTranslationInput{
			{Locale: "en", Title: "Launch Notes"},
		},
	})
	if err != nil {
		t.Fatalf("post: %v", err)
	}

	home := doJSONRequest(t, handler, http.MethodGet, "/api/ar/home", "", nil, http.StatusOK)
	if home.Header().Get("Content-Language") != "ar" {
		t.Fatalf("expected Content-Language ar got %q", home.Header().Get("Content-Language"))
	}
	var homePayload site.Home
	decodeJSONBody(t, home, &homePayload)
	if homePayload.Profile == nil || homePayload.Profile.FullName != "سارة حداد" {
		t.Fatalf("expected arabic profile got %+v", homePayload.Profile)
	}

	detail := doJSONRequest(t, handler, http.MethodGet, "/api/ar/posts/"+post.Slug, "", nil, http.StatusOK)
	var postDetail site.PostDetail
	decodeJSONBody(t, detail, &postDetail)
	if postDetail.Post.Title != "Launch Notes" {
		t.Fatalf("expected english fallback title got %+v", postDetail.Post)
	}
	doJSONRequest(t, handler, http.MethodGet, "/api/en/posts/missing", "", nil, http.StatusNotFound)

	negotiated := httptest.NewRequest(http.MethodGet, "/api/locale?lang=ar", nil)
	negRec := httptest.NewRecorder()
	handler.ServeHTTP(negRec, negotiated)
	if !strings.Contains(negRec.Body.String(), `"ar"`) {
		t.Fatalf("expected negotiated ar got %s", negRec.Body.String())
	}
	if cookies := negRec.Result().Cookies(); len(cookies) == 0 || cookies[0].Name != locales.LangCookieName {
		t.Fatalf("expected language cookie got %+v", cookies)
	}

	sitemap := httptest.NewRecorder()
	handler.ServeHTTP(sitemap, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))
	if sitemap.Code != http.StatusOK || !strings.Contains(sitemap.Body.String(), "https://example.com/ar/blog/launch-notes") {
		t.Fatalf("unexpected sitemap %d %s", sitemap.Code, sitemap.Body.String())
	}

	health := doJSONRequest(t, handler, http.MethodGet, "/healthz", "", nil, http.StatusOK)
	if health.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected request id header")
	}
}

func doJSONRequest(t *testing.T, handler http.Handler, method, path, token string, body any, wantStatus int) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != wantStatus {
		t.Fatalf("%s %s: expected status %d got %d (%s)", method, path, wantStatus, rec.Code, rec.Body.String())
	}
	return rec
}

func doMultipart(t *testing.T, handler http.Handler, token, filename string, content []byte, alt string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if alt != "" {
		if err := writer.WriteField("alt_text", alt); err != nil {
			t.Fatalf("alt field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/admin/api/media", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSONBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func paragraph(text string) map[string]any {
	return map[string]any{
		"type": "doc",
		"content": []map[string]any{
			{"type": "paragraph", "content": []map[string]any{{"type": "text", "text": text}}},
		},
	}
}
