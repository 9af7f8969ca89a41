package cms

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeList(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "bare array", body: `[{"id":1},{"id":2}]`, want: 2},
		{name: "paginated", body: `{"count":3,"next":null,"results":[{"id":1},{"id":2},{"id":3}]}`, want: 3},
		{name: "results not array", body: `{"results":{"id":1}}`, want: 0},
		{name: "empty object", body: `{}`, want: 0},
		{name: "null", body: `null`, want: 0},
		{name: "scalar", body: `42`, want: 0},
		{name: "empty body", body: ``, want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			items, err := NormalizeList([]byte(tc.body))
			require.NoError(t, err)
			require.NotNil(t, items)
			require.Len(t, items, tc.want)
		})
	}

	_, err := NormalizeList([]byte(`{"results": [`))
	require.Error(t, err)
}

func TestNormalizeListIdempotent(t *testing.T) {
	first, err := NormalizeList([]byte(`{"results":[{"id":1},{"id":2}]}`))
	require.NoError(t, err)
	encoded, err := json.Marshal(first)
	require.NoError(t, err)
	second, err := NormalizeList(encoded)
	require.NoError(t, err)
	require.Equal(t, len(first), len(second))
}

func TestResolveMedia(t *testing.T) {
	require.Equal(t, "", ResolveMedia("http://cms:8000", ""))
	require.Equal(t, "http://cms:8000/media/a.jpg", ResolveMedia("http://cms:8000", "/media/a.jpg"))
	require.Equal(t, "https://cdn.example.lk/a.jpg", ResolveMedia("http://cms:8000", "https://cdn.example.lk/a.jpg"))
	require.Equal(t, "/static/logo.png", ResolveMedia("http://cms:8000", "/static/logo.png"))

	require.Equal(t, "http://cms:8000", APIOrigin("http://cms:8000/api"))
	require.Equal(t, "http://cms:8000", APIOrigin("http://cms:8000/api/"))
	require.Equal(t, "http://cms:8000", APIOrigin("http://cms:8000"))

	c := NewClient("http://cms:8000/api/")
	require.Equal(t, "http://cms:8000/api", c.BaseURL())
	require.Equal(t, "http://cms:8000/media/x.pdf", c.MediaURL("/media/x.pdf"))
}

func TestDecodeFlexibleFields(t *testing.T) {
	items, err := DecodeList[News]([]byte(`[{"id":7,"slug":"","title":"Hello","published_at":"2024-05-01"},{"id":"x9","slug":"s","title":"T","published_at":"not a date"}]`), nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, ID("7"), items[0].ID)
	require.Equal(t, "7", items[0].Key())
	require.Equal(t, 2024, items[0].PublishedAt.Year())
	require.Equal(t, "s", items[1].Key())
	require.True(t, items[1].PublishedAt.IsZero())

	out, err := json.Marshal(items[0].ID)
	require.NoError(t, err)
	require.Equal(t, "7", string(out))
}

func TestDecodeListSkipsMalformedElements(t *testing.T) {
	var skipped []int
	items, err := DecodeList[Notice]([]byte(`{"results":[{"id":1,"title":"Exams"},{"id":2,"title":["not","text"]},{"id":3,"priority":"high"},{"id":4,"title":"Vesak"}]}`), func(index int, err error) {
		require.Error(t, err)
		skipped = append(skipped, index)
	})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, skipped)
	require.Len(t, items, 2)
	require.Equal(t, "Exams", items[0].Title)
	require.Equal(t, "Vesak", items[1].Title)

	_, err = DecodeList[Notice]([]byte(`[{"id":1}`), nil)
	require.Error(t, err)
}

func TestClientListKeepsWellFormedItems(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"title":"Seminar","start_date":"2024-03-12"},{"id":2,"title":{"en":"bad"}}]`)
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL+"/api", WithHTTPClient(ts.Client()))
	events, err := c.Events(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "Seminar", events[0].Title)
}

func TestClientSendsNoCacheHeadersAndDefaults(t *testing.T) {
	var gotQuery map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/albums/", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		require.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		require.Equal(t, "no-cache", r.Header.Get("Pragma"))
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"count":1,"results":[{"id":1,"title":"Vesak","slug":"vesak","images":[]}]}`)
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL+"/api", WithHTTPClient(ts.Client()))
	albums, err := c.Albums(context.Background(), Params{"page_size": "10", "search": ""})
	require.NoError(t, err)
	require.Len(t, albums, 1)
	require.Equal(t, map[string]string{"is_active": "true", "ordering": "position", "page_size": "10"}, gotQuery)
}

func TestClientGalleryImagesRequiresAlbum(t *testing.T) {
	c := NewClient("http://127.0.0.1:1/api")
	_, err := c.GalleryImages(context.Background(), " ", nil)
	require.ErrorIs(t, err, ErrMissingIdentifier)
	_, err = c.NewsDetail(context.Background(), "")
	require.ErrorIs(t, err, ErrMissingIdentifier)
}

func TestClientRequestErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/news/missing/":
			http.Error(w, `{"detail":"Not found."}`, http.StatusNotFound)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL+"/api", WithHTTPClient(ts.Client()))

	_, err := c.NewsDetail(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, err, ErrRequestFailed)

	_, err = c.Notices(context.Background())
	require.ErrorIs(t, err, ErrRequestFailed)
	require.False(t, errors.Is(err, ErrNotFound))
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	require.Equal(t, http.StatusInternalServerError, reqErr.StatusCode)
}

func TestClientSortsSlidesAndFindsAlbum(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/slides/":
			_, _ = io.WriteString(w, `[{"id":2,"position":5},{"id":1,"position":1}]`)
		case "/api/albums/":
			require.Equal(t, "none", r.URL.Query().Get("slug"))
			_, _ = io.WriteString(w, `{"results":[]}`)
		case "/api/hero-intro/":
			_, _ = io.WriteString(w, `[]`)
		}
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL+"/api", WithHTTPClient(ts.Client()))
	slides, err := c.Slides(context.Background())
	require.NoError(t, err)
	require.Equal(t, ID("1"), slides[0].ID)

	_, err = c.AlbumBySlug(context.Background(), "none")
	require.ErrorIs(t, err, ErrNotFound)

	intro, err := c.HeroIntro(context.Background())
	require.NoError(t, err)
	require.Nil(t, intro)
}

func TestClientLibraryEndpoints(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/book-categories/":
			_, _ = io.WriteString(w, `{"results":[{"id":3,"name":"Pali","name_si":"පාලි","publications_count":4}]}`)
		case "/api/publications/":
			require.Equal(t, "7", r.URL.Query().Get("category"))
			_, _ = io.WriteString(w, `[{"id":"p1","title":"Syllabus","file":"/media/p/syllabus.pdf","category":7}]`)
		case "/api/publication-categories/":
			_, _ = io.WriteString(w, `null`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL+"/api", WithHTTPClient(ts.Client()))
	cats, err := c.BookCategories(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	require.Equal(t, "පාලි", cats[0].NameSi)

	pubs, err := c.Publications(context.Background(), Params{"category": "7"})
	require.NoError(t, err)
	require.Len(t, pubs, 1)
	require.Equal(t, ID("7"), pubs[0].Category)
	require.Equal(t, "/media/p/syllabus.pdf", pubs[0].Href())

	pcats, err := c.PublicationCategories(context.Background())
	require.NoError(t, err)
	require.Empty(t, pcats)
}

func TestSendContactValidatesBeforeRequest(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL+"/api", WithHTTPClient(ts.Client()))
	err := c.SendContact(context.Background(), ContactMessage{Name: "  ", Email: "not-an-email", Message: ""})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, KeyNameRequired, verr.Field("name"))
	require.Equal(t, KeyEmailInvalid, verr.Field("email"))
	require.Equal(t, KeyMessageRequired, verr.Field("message"))
	require.Empty(t, verr.Field("subject"))
	require.Zero(t, atomic.LoadInt32(&calls))
}

func TestSendContactPostsPayload(t *testing.T) {
	var got ContactMessage
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/contact/", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL+"/api", WithHTTPClient(ts.Client()))
	err := c.SendContact(context.Background(), ContactMessage{Name: " Ananda ", Email: "ananda@example.lk", Message: "Hello"})
	require.NoError(t, err)
	require.Equal(t, "Ananda", got.Name)
}

func TestSendContactFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL+"/api", WithHTTPClient(ts.Client()))
	err := c.SendContact(context.Background(), ContactMessage{Name: "A", Email: "a@example.lk", Message: "m"})
	var submitErr *SubmitError
	require.ErrorAs(t, err, &submitErr)
	require.Equal(t, MsgContactFailed, submitErr.Message)
	require.ErrorIs(t, err, ErrRequestFailed)
}

func TestSubscribeFlattensFieldErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"email":["newsletter subscription with this email already exists."]}`)
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL+"/api", WithHTTPClient(ts.Client()))
	err := c.Subscribe(context.Background(), "a@example.lk")
	var submitErr *SubmitError
	require.ErrorAs(t, err, &submitErr)
	require.Equal(t, "Newsletter subscription with this email already exists.", submitErr.Message)

	require.ErrorAs(t, c.Subscribe(context.Background(), "  "), new(*ValidationError))
}

func TestFlattenFieldErrors(t *testing.T) {
	require.Equal(t, "", FlattenFieldErrors("  "))
	require.Equal(t, "Plain failure", FlattenFieldErrors("Plain failure"))
	require.Equal(t, "Bad email. Too short.", FlattenFieldErrors(`{"name":"too short","email":["bad email"]}`))
	require.Equal(t, "One. Two.", FlattenFieldErrors(`["one","two"]`))
}

func TestLocalAboutSections(t *testing.T) {
	dir := t.TempDir()
	writeContent(t, dir, "en", "vision.md", "---\ntitle: Vision\nnav_label: Our vision\nposition: 2\n---\n\nA **clear** vision.\n")
	writeContent(t, dir, "si", "vision.md", "---\ntitle: දැක්ම\n---\nදැක්ම පෙළ\n")
	writeContent(t, dir, "en", "history.md", "# History\n")

	sections, err := LocalAboutSections(dir)
	require.NoError(t, err)
	require.Len(t, sections, 2)

	require.Equal(t, "history", sections[0].Slug)
	require.Equal(t, "History", sections[0].Title)
	require.True(t, sections[0].Markdown)

	vision := sections[1]
	require.Equal(t, "Vision", vision.Title)
	require.Equal(t, "දැක්ම", vision.TitleSi)
	require.Equal(t, "Our vision", vision.NavLabel)
	require.Equal(t, 2, vision.Position)
	require.Equal(t, "A **clear** vision.\n", vision.Body)
	require.Equal(t, "දැක්ම පෙළ\n", vision.BodySi)
}

func TestAboutSectionsOrFallback(t *testing.T) {
	dir := t.TempDir()
	writeContent(t, dir, "en", "mission.md", "---\ntitle: Mission\n---\nServe.\n")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL+"/api", WithHTTPClient(ts.Client()), WithContentDir(dir))
	sections, local, err := c.AboutSectionsOrFallback(context.Background())
	require.NoError(t, err)
	require.True(t, local)
	require.Len(t, sections, 1)
	require.Equal(t, "Mission", sections[0].Title)

	empty := NewClient(ts.URL+"/api", WithHTTPClient(ts.Client()), WithContentDir(filepath.Join(dir, "missing")))
	_, local, err = empty.AboutSectionsOrFallback(context.Background())
	require.False(t, local)
	require.ErrorIs(t, err, ErrRequestFailed)
}

func TestSplitFrontMatter(t *testing.T) {
	fm, body := splitFrontMatter("\ufeff---\ntitle: x\n---\n\nbody")
	require.Equal(t, "title: x", fm)
	require.Equal(t, "body", body)

	fm, body = splitFrontMatter("no front matter")
	require.Empty(t, fm)
	require.Equal(t, "no front matter", body)
}

func writeContent(t *testing.T, dir, lang, name, body string) {
	t.Helper()
	root := filepath.Join(dir, aboutKind, lang)
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(body), 0o600))
}
