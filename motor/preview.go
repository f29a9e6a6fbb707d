package motor

// PreviewKind distinguishes real content from the placeholder
type PreviewKind int

const (
	PreviewEmpty PreviewKind = iota
	PreviewContent
)

const (
	previewClass      = "preview"
	previewEmptyClass = "preview-empty"
	previewEmptyText  = "No response content."
)

// PreviewNode is a renderable preview of a flow's response. How it is drawn is up to
// the view layer; Class is a styling hint.
type PreviewNode struct {
	Kind  PreviewKind
	Class string
	Text  string
}

// IsEmpty reports whether the node is the no-content placeholder.
func (p PreviewNode) IsEmpty() bool {
	return p.Kind == PreviewEmpty
}

// PreviewService builds preview nodes. It is stateless and does not cache.
type PreviewService struct{}

// NewPreviewService creates a preview service
func NewPreviewService() *PreviewService {
	return &PreviewService{}
}

// BuildPreview wraps raw textual content in a preview container, the content is not transformed.
func (s *PreviewService) BuildPreview(rawContent string) PreviewNode {
	return PreviewNode{
		Kind:  PreviewContent,
		Class: previewClass,
		Text:  rawContent,
	}
}

// BuildEmptyPreview returns the fixed placeholder shown when there is no content.
func (s *PreviewService) BuildEmptyPreview() PreviewNode {
	return PreviewNode{
		Kind:  PreviewEmpty,
		Class: previewEmptyClass,
		Text:  previewEmptyText,
	}
}
