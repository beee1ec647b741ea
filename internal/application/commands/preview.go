package commands

import (
	"context"

	"pdflens/internal/domain"
	"pdflens/internal/ports"
)

// PageSource returns the rendered image of a document page
type PageSource interface {
	Get(ctx context.Context, doc domain.Document, page int) (domain.PageImage, error)
}

// PreviewCommand renders a document page for display in a terminal cell box
type PreviewCommand struct {
	pages   PageSource
	display ports.ImageDisplay
}

// NewPreviewCommand creates a new PreviewCommand
func NewPreviewCommand(pages PageSource, display ports.ImageDisplay) *PreviewCommand {
	return &PreviewCommand{
		pages:   pages,
		display: display,
	}
}

// Preview is a rendered page ready for the terminal
type Preview struct {
	Document domain.Document
	Page     int
	Output   string
	Image    domain.PageImage
}

// Execute fetches (or renders) the page image and converts it for the terminal
func (c *PreviewCommand) Execute(ctx context.Context, doc domain.Document, page, width, height int) (*Preview, error) {
	img, err := c.pages.Get(ctx, doc, page)
	if err != nil {
		return nil, err
	}

	out, err := c.display.Render(ctx, img, width, height)
	if err != nil {
		return nil, err
	}

	return &Preview{
		Document: doc,
		Page:     page,
		Output:   out,
		Image:    img,
	}, nil
}
