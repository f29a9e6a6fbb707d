package motor

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/pb33f/harhar"
)

// Predicate decides whether a descriptor claims a raw capture. Predicates must be pure:
// they look only at the entry, never at registry or flow state.
type Predicate func(entry *harhar.Entry) bool

// Constructor builds the category specific record around an already categorised base flow.
type Constructor func(base *Flow) FlowRecord

// Descriptor is one registered category.
type Descriptor struct {
	Tag     string
	Matches Predicate
	New     Constructor
}

// Registry resolves raw captures into flow records. Descriptors are checked in
// registration order and the first match wins; captures nothing claims become a
// generic flow with category "none".
type Registry struct {
	descriptors []Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry creates a registry holding the built-in categories.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

// Register appends a descriptor. A nil constructor yields the categorised base flow.
func (r *Registry) Register(tag string, matches Predicate, ctor Constructor) {
	if ctor == nil {
		ctor = Generic
	}
	r.descriptors = append(r.descriptors, Descriptor{Tag: tag, Matches: matches, New: ctor})
}

// Descriptors returns a copy of the descriptors in priority order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Len returns the number of descriptors
func (r *Registry) Len() int {
	return len(r.descriptors)
}

// Category returns the tag the entry would resolve to.
func (r *Registry) Category(entry *harhar.Entry) string {
	if d, ok := r.match(entry); ok {
		return d.Tag
	}
	return CategoryNone
}

// Resolve wraps a raw capture in the record type of the first matching descriptor.
func (r *Registry) Resolve(id int, entry *harhar.Entry, deps FlowDeps) FlowRecord {
	base := NewFlow(id, entry, deps)

	d, ok := r.match(base.entry)
	if !ok {
		return base
	}

	base.category = d.Tag
	return d.New(base)
}

func (r *Registry) match(entry *harhar.Entry) (Descriptor, bool) {
	for _, d := range r.descriptors {
		if d.Matches != nil && d.Matches(entry) {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Generic is the constructor for categories without specialised behaviour.
func Generic(base *Flow) FlowRecord {
	return base
}

// CategoryRule is a user supplied category: a response MIME type prefix and/or
// a URL path suffix. Either one matching claims the capture.
type CategoryRule struct {
	Tag        string
	MimePrefix string
	URLSuffix  string
}

// Validate checks the rule can ever match
func (c CategoryRule) Validate() error {
	if c.Tag == "" {
		return fmt.Errorf("category rule has no tag")
	}
	if c.Tag == CategoryNone {
		return fmt.Errorf("category rule cannot use reserved tag %q", CategoryNone)
	}
	if c.MimePrefix == "" && c.URLSuffix == "" {
		return fmt.Errorf("category rule %q needs mimePrefix or urlSuffix", c.Tag)
	}
	return nil
}

// Predicate compiles the rule into a predicate.
func (c CategoryRule) Predicate() Predicate {
	mimePrefix := strings.ToLower(c.MimePrefix)
	urlSuffix := strings.ToLower(c.URLSuffix)

	return func(entry *harhar.Entry) bool {
		if mimePrefix != "" && strings.HasPrefix(responseMime(entry), mimePrefix) {
			return true
		}
		if urlSuffix != "" && strings.HasSuffix(requestPath(entry), urlSuffix) {
			return true
		}
		return false
	}
}

// RegisterRules appends user rules. Call it before RegisterBuiltins so rules win.
func (r *Registry) RegisterRules(rules []CategoryRule) error {
	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			return err
		}
	}
	for _, rule := range rules {
		r.Register(rule.Tag, rule.Predicate(), Generic)
	}
	return nil
}

// built-in category tags
const (
	CategoryImage      = "image"
	CategoryJavaScript = "javascript"
	CategoryCSS        = "css"
	CategoryHTML       = "html"
	CategoryJSON       = "json"
	CategoryFont       = "font"
	CategoryDocument   = "document"
)

// RegisterBuiltins appends the built-in categories. Order matters: svg is an image
// before it is xml.
func RegisterBuiltins(r *Registry) {
	r.Register(CategoryImage, matchAny(mimeHasPrefix("image/"), pathHasExt(".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".ico", ".bmp")), NewImageFlow)
	r.Register(CategoryJavaScript, matchAny(mimeContains("javascript", "ecmascript"), pathHasExt(".js", ".mjs")), Generic)
	r.Register(CategoryCSS, matchAny(mimeHasPrefix("text/css"), pathHasExt(".css")), Generic)
	r.Register(CategoryHTML, matchAny(mimeHasPrefix("text/html", "application/xhtml"), pathHasExt(".html", ".htm")), Generic)
	r.Register(CategoryJSON, matchAny(mimeContains("json"), pathHasExt(".json")), Generic)
	r.Register(CategoryFont, matchAny(mimeHasPrefix("font/", "application/font", "application/x-font"), pathHasExt(".woff", ".woff2", ".ttf", ".otf", ".eot")), Generic)
	r.Register(CategoryDocument, matchAny(mimeHasPrefix("text/plain"), mimeContains("xml"), pathHasExt(".txt", ".xml")), Generic)
}

// ImageFlow previews as a short description, binary bodies make no sense as text.
type ImageFlow struct {
	*Flow
}

// NewImageFlow is the constructor registered for the image category.
func NewImageFlow(base *Flow) FlowRecord {
	return &ImageFlow{Flow: base}
}

func (f *ImageFlow) Preview(ctx context.Context) PreviewNode {
	if err := ctx.Err(); err != nil {
		return f.PreviewEmpty()
	}
	resp := f.Response()
	if resp.Size() <= 0 && resp.MimeType() == "" {
		return f.PreviewEmpty()
	}

	mime := resp.MimeType()
	if mime == "" {
		mime = "image"
	}
	return f.deps.Previews.BuildPreview(fmt.Sprintf("%s, %d bytes\n%s", mime, resp.Size(), f.Request().URL()))
}

func matchAny(preds ...Predicate) Predicate {
	return func(entry *harhar.Entry) bool {
		for _, p := range preds {
			if p(entry) {
				return true
			}
		}
		return false
	}
}

func mimeHasPrefix(prefixes ...string) Predicate {
	return func(entry *harhar.Entry) bool {
		mime := responseMime(entry)
		for _, p := range prefixes {
			if strings.HasPrefix(mime, p) {
				return true
			}
		}
		return false
	}
}

func mimeContains(parts ...string) Predicate {
	return func(entry *harhar.Entry) bool {
		mime := responseMime(entry)
		for _, p := range parts {
			if strings.Contains(mime, p) {
				return true
			}
		}
		return false
	}
}

func pathHasExt(exts ...string) Predicate {
	return func(entry *harhar.Entry) bool {
		ext := path.Ext(requestPath(entry))
		if ext == "" {
			return false
		}
		for _, e := range exts {
			if ext == e {
				return true
			}
		}
		return false
	}
}

func responseMime(entry *harhar.Entry) string {
	mime := entry.Response.Body.MIMEType
	if mime == "" {
		mime = headerValue(entry.Response.Headers, "Content-Type")
	}
	return strings.ToLower(strings.TrimSpace(mime))
}

func requestPath(entry *harhar.Entry) string {
	u, err := url.Parse(entry.Request.URL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Path)
}
