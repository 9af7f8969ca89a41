package cms

import (
	"context"
	"net/url"
	"sort"
	"strings"
)

var (
	albumDefaults   = Params{"is_active": "true", "ordering": "position", "page_size": "50"}
	galleryDefaults = Params{"page_size": "200"}
	bookDefaults    = Params{"page_size": "6"}
)

// Slides returns hero slides ordered by position.
func (c *Client) Slides(ctx context.Context) ([]Slide, error) {
	slides, err := getList[Slide](ctx, c, "slides", "/slides/", nil)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(slides, func(i, j int) bool { return slides[i].Position < slides[j].Position })
	return slides, nil
}

// News lists articles, newest first as ordered by the API.
func (c *Client) News(ctx context.Context, params Params) ([]News, error) {
	return getList[News](ctx, c, "news", "/news/", params)
}

// FeaturedNews lists articles flagged as featured.
func (c *Client) FeaturedNews(ctx context.Context) ([]News, error) {
	return getList[News](ctx, c, "news_featured", "/news/featured/", nil)
}

// NewsDetail fetches one article by slug (or numeric id).
func (c *Client) NewsDetail(ctx context.Context, slug string) (News, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return News{}, ErrMissingIdentifier
	}
	return getOne[News](ctx, c, "news_detail", "/news/"+url.PathEscape(slug)+"/")
}

// Notices lists announcements.
func (c *Client) Notices(ctx context.Context) ([]Notice, error) {
	return getList[Notice](ctx, c, "notices", "/notices/", nil)
}

// Notice fetches one announcement by id.
func (c *Client) Notice(ctx context.Context, id string) (Notice, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Notice{}, ErrMissingIdentifier
	}
	return getOne[Notice](ctx, c, "notice_detail", "/notices/"+url.PathEscape(id)+"/")
}

// Events lists calendar entries.
func (c *Client) Events(ctx context.Context) ([]Event, error) {
	return getList[Event](ctx, c, "events", "/events/", nil)
}

// Videos lists published videos.
func (c *Client) Videos(ctx context.Context) ([]Video, error) {
	return getList[Video](ctx, c, "videos", "/videos/", nil)
}

// Stats lists headline figures.
func (c *Client) Stats(ctx context.Context) ([]Stat, error) {
	return getList[Stat](ctx, c, "stats", "/stats/", nil)
}

// Links lists related external sites.
func (c *Client) Links(ctx context.Context) ([]ExternalLink, error) {
	return getList[ExternalLink](ctx, c, "links", "/links/", nil)
}

// Albums lists active albums ordered by position unless params override it.
func (c *Client) Albums(ctx context.Context, params Params) ([]Album, error) {
	return getList[Album](ctx, c, "albums", "/albums/", params.merge(albumDefaults))
}

// AlbumBySlug returns the first album matching slug.
func (c *Client) AlbumBySlug(ctx context.Context, slug string) (Album, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Album{}, ErrMissingIdentifier
	}
	albums, err := c.Albums(ctx, Params{"slug": slug})
	if err != nil {
		return Album{}, err
	}
	if len(albums) == 0 {
		return Album{}, ErrNotFound
	}
	return albums[0], nil
}

// GalleryImages lists the images of one album.
func (c *Client) GalleryImages(ctx context.Context, albumID string, params Params) ([]GalleryImage, error) {
	albumID = strings.TrimSpace(albumID)
	if albumID == "" {
		return nil, ErrMissingIdentifier
	}
	defaults := galleryDefaults.merge(Params{"album": albumID})
	return getList[GalleryImage](ctx, c, "gallery", "/gallery/", params.merge(defaults))
}

// Books lists library books; six per page unless overridden.
func (c *Client) Books(ctx context.Context, params Params) ([]Book, error) {
	return getList[Book](ctx, c, "books", "/books/", params.merge(bookDefaults))
}

// BookCategories lists library categories.
func (c *Client) BookCategories(ctx context.Context, params Params) ([]BookCategory, error) {
	return getList[BookCategory](ctx, c, "book_categories", "/book-categories/", params)
}

// DownloadCategories lists download categories with their publications.
func (c *Client) DownloadCategories(ctx context.Context) ([]DownloadCategory, error) {
	return getList[DownloadCategory](ctx, c, "download_categories", "/download-categories/", nil)
}

// Publications lists downloadable files.
func (c *Client) Publications(ctx context.Context, params Params) ([]Publication, error) {
	return getList[Publication](ctx, c, "publications", "/publications/", params)
}

// PublicationCategories lists publication categories.
func (c *Client) PublicationCategories(ctx context.Context) ([]PublicationCategory, error) {
	return getList[PublicationCategory](ctx, c, "publication_categories", "/publication-categories/", nil)
}

// HeroIntro returns the active welcome block, or nil when none is configured.
func (c *Client) HeroIntro(ctx context.Context) (*HeroIntro, error) {
	items, err := getList[HeroIntro](ctx, c, "hero_intro", "/hero-intro/", nil)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// AboutSections lists the about page tabs ordered by position.
func (c *Client) AboutSections(ctx context.Context) ([]AboutSection, error) {
	sections, err := getList[AboutSection](ctx, c, "about_sections", "/about-sections/", nil)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].Position < sections[j].Position })
	return sections, nil
}

// TextSnippets returns active snippets keyed by their key.
func (c *Client) TextSnippets(ctx context.Context) (Snippets, error) {
	items, err := getList[TextSnippet](ctx, c, "text_snippets", "/text-snippets/", nil)
	if err != nil {
		return nil, err
	}
	out := make(Snippets, len(items))
	for _, item := range items {
		key := strings.TrimSpace(item.Key)
		if key == "" {
			continue
		}
		out[key] = item
	}
	return out, nil
}

// FooterAbout lists footer about blurbs, newest first.
func (c *Client) FooterAbout(ctx context.Context, params Params) ([]FooterAbout, error) {
	return getList[FooterAbout](ctx, c, "footer_about", "/footer-about/", params)
}

// FooterLinks lists footer links.
func (c *Client) FooterLinks(ctx context.Context, params Params) ([]FooterLink, error) {
	return getList[FooterLink](ctx, c, "footer_links", "/footer-links/", params)
}

// ContactInfo lists contact blocks; the first one is used.
func (c *Client) ContactInfo(ctx context.Context) ([]ContactInfo, error) {
	return getList[ContactInfo](ctx, c, "contact_info", "/contact-info/", nil)
}

// Ping requests the API root. It backs the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "ping", "/", nil)
	return err
}
