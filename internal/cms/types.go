package cms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ID is a record identifier. The API sends numbers; slugs and legacy rows may
// arrive as strings.
type ID string

// UnmarshalJSON accepts JSON strings, numbers and null.
func (id *ID) UnmarshalJSON(b []byte) error {
	s, err := flexibleString(b)
	if err != nil {
		return fmt.Errorf("cms: id: %w", err)
	}
	*id = ID(s)
	return nil
}

// MarshalJSON keeps numeric ids numeric so echoed payloads round-trip.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if json.Valid([]byte(id)) && isNumeric(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

// Decimal is a DRF DecimalField, sent as a string or a number.
type Decimal string

// UnmarshalJSON accepts JSON strings, numbers and null.
func (d *Decimal) UnmarshalJSON(b []byte) error {
	s, err := flexibleString(b)
	if err != nil {
		return fmt.Errorf("cms: decimal: %w", err)
	}
	*d = Decimal(s)
	return nil
}

// Time is a leniently parsed timestamp: RFC3339 date-times and YYYY-MM-DD
// dates are accepted, anything else becomes the zero time.
type Time struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime parses v with the lenient layouts.
func ParseTime(v string) Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return Time{Time: t}
		}
	}
	return Time{}
}

// UnmarshalJSON never fails on unexpected values.
func (t *Time) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*t = Time{}
		return nil
	}
	*t = ParseTime(s)
	return nil
}

// MarshalJSON writes RFC3339, or null for the zero time.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

func flexibleString(b []byte) (string, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return "", nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '-' && r != '.' {
			return false
		}
	}
	return true
}

// Image is an attached picture with an optional bilingual caption.
type Image struct {
	ID        ID     `json:"id"`
	Image     string `json:"image"`
	Caption   string `json:"caption"`
	CaptionSi string `json:"caption_si"`
	Position  int    `json:"position"`
	CreatedAt Time   `json:"created_at"`
	UpdatedAt Time   `json:"updated_at"`
}

// News is an article.
type News struct {
	ID            ID      `json:"id"`
	Title         string  `json:"title"`
	TitleSi       string  `json:"title_si"`
	Slug          string  `json:"slug"`
	Image         string  `json:"image"`
	Excerpt       string  `json:"excerpt"`
	ExcerptSi     string  `json:"excerpt_si"`
	Content       string  `json:"content"`
	ContentSi     string  `json:"content_si"`
	PublishedAt   Time    `json:"published_at"`
	IsFeatured    bool    `json:"is_featured"`
	CreatedAt     Time    `json:"created_at"`
	UpdatedAt     Time    `json:"updated_at"`
	GalleryImages []Image `json:"gallery_images"`
}

// Key identifies the article in URLs: the slug, or the id when no slug is set.
func (n News) Key() string {
	if strings.TrimSpace(n.Slug) != "" {
		return n.Slug
	}
	return n.ID.String()
}

// Notice is an official announcement.
type Notice struct {
	ID            ID      `json:"id"`
	Title         string  `json:"title"`
	TitleSi       string  `json:"title_si"`
	Content       string  `json:"content"`
	ContentSi     string  `json:"content_si"`
	Image         string  `json:"image"`
	PublishedAt   Time    `json:"published_at"`
	ExpiresAt     Time    `json:"expires_at"`
	Priority      int     `json:"priority"`
	CreatedAt     Time    `json:"created_at"`
	UpdatedAt     Time    `json:"updated_at"`
	GalleryImages []Image `json:"gallery_images"`
}

// Publication is a downloadable file.
type Publication struct {
	ID            ID     `json:"id"`
	Title         string `json:"title"`
	TitleSi       string `json:"title_si"`
	Description   string `json:"description"`
	DescriptionSi string `json:"description_si"`
	File          string `json:"file"`
	ExternalURL   string `json:"external_url"`
	PublishedAt   Time   `json:"published_at"`
	IsActive      bool   `json:"is_active"`
	Cover         string `json:"cover"`
	Department    string `json:"department"`
	DepartmentSi  string `json:"department_si"`
	Category      ID     `json:"category"`
	CreatedAt     Time   `json:"created_at"`
	UpdatedAt     Time   `json:"updated_at"`
}

// Href is the external link when set, otherwise the uploaded file.
func (p Publication) Href() string {
	if strings.TrimSpace(p.ExternalURL) != "" {
		return p.ExternalURL
	}
	return p.File
}

// DownloadCategory groups publications on the downloads page.
type DownloadCategory struct {
	ID            ID            `json:"id"`
	Name          string        `json:"name"`
	NameSi        string        `json:"name_si"`
	Description   string        `json:"description"`
	DescriptionSi string        `json:"description_si"`
	Position      int           `json:"position"`
	CreatedAt     Time          `json:"created_at"`
	UpdatedAt     Time          `json:"updated_at"`
	Publications  []Publication `json:"publications"`
}

// PublicationCategory is a lightweight category reference.
type PublicationCategory struct {
	ID     ID     `json:"id"`
	Name   string `json:"name"`
	NameSi string `json:"name_si"`
	Slug   string `json:"slug"`
}

// Video is either an external URL or an uploaded file.
type Video struct {
	ID            ID     `json:"id"`
	Title         string `json:"title"`
	TitleSi       string `json:"title_si"`
	URL           string `json:"url"`
	File          string `json:"file"`
	Description   string `json:"description"`
	DescriptionSi string `json:"description_si"`
	PublishedAt   Time   `json:"published_at"`
	Thumbnail     string `json:"thumbnail"`
	PlaybackURL   string `json:"playback_url"`
	CreatedAt     Time   `json:"created_at"`
	UpdatedAt     Time   `json:"updated_at"`
}

// Source returns the URL to play: playback_url, then url, then file.
func (v Video) Source() string {
	for _, s := range []string{v.PlaybackURL, v.URL, v.File} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// Album is a photo album with nested images.
type Album struct {
	ID            ID      `json:"id"`
	Title         string  `json:"title"`
	TitleSi       string  `json:"title_si"`
	Slug          string  `json:"slug"`
	Description   string  `json:"description"`
	DescriptionSi string  `json:"description_si"`
	Cover         string  `json:"cover"`
	IsActive      bool    `json:"is_active"`
	Position      int     `json:"position"`
	PublishedAt   Time    `json:"published_at"`
	Images        []Image `json:"images"`
	CreatedAt     Time    `json:"created_at"`
	UpdatedAt     Time    `json:"updated_at"`
}

// GalleryImage is an album image fetched from the flat gallery endpoint.
type GalleryImage = Image

// Event is a dated calendar entry.
type Event struct {
	ID            ID     `json:"id"`
	Title         string `json:"title"`
	TitleSi       string `json:"title_si"`
	Description   string `json:"description"`
	DescriptionSi string `json:"description_si"`
	StartDate     Time   `json:"start_date"`
	EndDate       Time   `json:"end_date"`
	CreatedAt     Time   `json:"created_at"`
	UpdatedAt     Time   `json:"updated_at"`
}

// Stat is a headline figure on the home page.
type Stat struct {
	ID      ID     `json:"id"`
	Label   string `json:"label"`
	LabelSi string `json:"label_si"`
	Value   string `json:"value"`
	ValueSi string `json:"value_si"`
}

// ExternalLink is a related-site link.
type ExternalLink struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	NameSi   string `json:"name_si"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

// FooterLink is a link shown in the footer.
type FooterLink struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	NameSi   string `json:"name_si"`
	URL      string `json:"url"`
	Position int    `json:"position"`
	IsActive bool   `json:"is_active"`
}

// Slide is a hero carousel slide.
type Slide struct {
	ID            ID     `json:"id"`
	Title         string `json:"title"`
	TitleSi       string `json:"title_si"`
	Subtitle      string `json:"subtitle"`
	SubtitleSi    string `json:"subtitle_si"`
	Image         string `json:"image"`
	ButtonLabel   string `json:"button_label"`
	ButtonLabelSi string `json:"button_label_si"`
	ButtonURL     string `json:"button_url"`
	Position      int    `json:"position"`
}

// HeroIntro is the welcome block of the home page.
type HeroIntro struct {
	ID               ID     `json:"id"`
	Heading          string `json:"heading"`
	HeadingSi        string `json:"heading_si"`
	Highlight        string `json:"highlight"`
	HighlightSi      string `json:"highlight_si"`
	Description      string `json:"description"`
	DescriptionSi    string `json:"description_si"`
	PrimaryLabel     string `json:"primary_label"`
	PrimaryLabelSi   string `json:"primary_label_si"`
	PrimaryURL       string `json:"primary_url"`
	SecondaryLabel   string `json:"secondary_label"`
	SecondaryLabelSi string `json:"secondary_label_si"`
	SecondaryURL     string `json:"secondary_url"`
	IsActive         bool   `json:"is_active"`
	UpdatedAt        Time   `json:"updated_at"`
}

// AboutSection is one tab of the about page.
type AboutSection struct {
	ID         ID     `json:"id"`
	Slug       string `json:"slug"`
	NavLabel   string `json:"nav_label"`
	NavLabelSi string `json:"nav_label_si"`
	Title      string `json:"title"`
	TitleSi    string `json:"title_si"`
	Body       string `json:"body"`
	BodySi     string `json:"body_si"`
	Position   int    `json:"position"`
	IsActive   bool   `json:"is_active"`
	CreatedAt  Time   `json:"created_at"`
	UpdatedAt  Time   `json:"updated_at"`

	// Markdown is set on sections read from local content files.
	Markdown bool `json:"-"`
}

// TextSnippet is an admin-editable piece of site copy.
type TextSnippet struct {
	ID       ID     `json:"id"`
	Key      string `json:"key"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	TextSi   string `json:"text_si"`
	IsActive bool   `json:"is_active"`
}

// Snippets indexes text snippets by key.
type Snippets map[string]TextSnippet

// Get returns the snippet for key and whether it exists.
func (s Snippets) Get(key string) (TextSnippet, bool) {
	v, ok := s[key]
	return v, ok
}

// ContactInfo is the organisation's contact block.
type ContactInfo struct {
	ID             ID      `json:"id"`
	Organization   string  `json:"organization"`
	OrganizationSi string  `json:"organization_si"`
	Phone          string  `json:"phone"`
	Email          string  `json:"email"`
	Address        string  `json:"address"`
	AddressSi      string  `json:"address_si"`
	MapURL         string  `json:"map_url"`
	MapEmbed       string  `json:"map_embed"`
	Latitude       Decimal `json:"latitude"`
	Longitude      Decimal `json:"longitude"`
	MapZoom        int     `json:"map_zoom"`
	CreatedAt      Time    `json:"created_at"`
	UpdatedAt      Time    `json:"updated_at"`
}

// FooterAbout is the footer's about blurb.
type FooterAbout struct {
	ID       ID     `json:"id"`
	Title    string `json:"title"`
	TitleSi  string `json:"title_si"`
	Body     string `json:"body"`
	BodySi   string `json:"body_si"`
	IsActive bool   `json:"is_active"`
}

// BookCategory groups library books.
type BookCategory struct {
	ID                ID     `json:"id"`
	Name              string `json:"name"`
	NameSi            string `json:"name_si"`
	Slug              string `json:"slug"`
	Description       string `json:"description"`
	DescriptionSi     string `json:"description_si"`
	Position          int    `json:"position"`
	PublicationsCount int    `json:"publications_count"`
}

// Book is a library publication entry.
type Book struct {
	ID            ID                   `json:"id"`
	Category      *PublicationCategory `json:"category"`
	Title         string               `json:"title"`
	TitleSi       string               `json:"title_si"`
	Subtitle      string               `json:"subtitle"`
	SubtitleSi    string               `json:"subtitle_si"`
	Authors       string               `json:"authors"`
	AuthorsSi     string               `json:"authors_si"`
	Year          ID                   `json:"year"`
	Description   string               `json:"description"`
	DescriptionSi string               `json:"description_si"`
	Cover         string               `json:"cover"`
	PDFFile       string               `json:"pdf_file"`
	ExternalURL   string               `json:"external_url"`
	DownloadHref  string               `json:"download_href"`
	PublishedAt   Time                 `json:"published_at"`
	IsActive      bool                 `json:"is_active"`
	IsFeatured    bool                 `json:"is_featured"`
	Images        []Image              `json:"images"`
}

// Href is the external URL when set, otherwise the PDF, otherwise the API's download_href.
func (b Book) Href() string {
	for _, s := range []string{b.ExternalURL, b.PDFFile, b.DownloadHref} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
