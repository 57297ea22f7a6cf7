// Package card renders the normalized summarization result into a PDF
// study card.
package card

import (
	"fmt"
	"log/slog"

	"github.com/go-pdf/fpdf"

	"github.com/studycard/studycard/internal/summarize"
)

const (
	pageMargin  = 20.0
	imageMaxW   = 70.0
	imageMaxH   = 45.0
	lineHeight  = 7.0
	builtinFont = "Helvetica"
)

type Renderer struct {
	fontPath string
	logger   *slog.Logger
}

// NewRenderer creates a card renderer. fontPath may point to a TTF with
// CJK coverage; when empty or unloadable the built-in font is used.
func NewRenderer(fontPath string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{fontPath: fontPath, logger: logger}
}

// Render writes an A4 study card to outPath. A failure to embed the
// source image never aborts the card: rendering proceeds text-only.
func (r *Renderer) Render(result summarize.Result, imagePath, outPath string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, pageMargin)

	family := builtinFont
	if r.fontPath != "" {
		pdf.AddUTF8Font("studycard", "", r.fontPath)
		if pdf.Err() {
			r.logger.Warn("loading card font failed, using built-in font",
				"font", r.fontPath, "error", pdf.Error())
			pdf.ClearError()
		} else {
			family = "studycard"
		}
	}

	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()

	// Title.
	pdf.SetFont(family, "", 18)
	pdf.CellFormat(0, 10, "学习卡片", "", 1, "L", false, 0, "")

	r.drawImage(pdf, imagePath, pageW)

	// Learn points.
	pdf.Ln(6)
	pdf.SetFont(family, "", 12)
	pdf.CellFormat(0, lineHeight, "精炼学习点：", "", 1, "L", false, 0, "")
	for i, point := range result.LearnPoints {
		pdf.MultiCell(0, lineHeight, fmt.Sprintf("%d. %s", i+1, point), "", "L", false)
	}

	// Confusions.
	pdf.Ln(4)
	pdf.CellFormat(0, lineHeight, "容易混淆的知识点：", "", 1, "L", false, 0, "")
	for _, c := range result.Confusions {
		pdf.MultiCell(0, lineHeight, fmt.Sprintf("%s vs %s - %s", c.Left, c.Right, c.Explain), "", "L", false)
		if c.Example != "" {
			pdf.MultiCell(0, lineHeight, fmt.Sprintf("例子：%s", c.Example), "", "L", false)
		}
		pdf.Ln(2)
	}

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("writing pdf %s: %w", outPath, err)
	}
	return nil
}

// drawImage places a thumbnail of the source photo in the top-right
// corner. Any registration failure is logged and swallowed.
func (r *Renderer) drawImage(pdf *fpdf.Fpdf, imagePath string, pageW float64) {
	if imagePath == "" {
		return
	}
	opts := fpdf.ImageOptions{ReadDpi: true}
	info := pdf.RegisterImageOptions(imagePath, opts)
	if pdf.Err() || info == nil {
		r.logger.Warn("embedding source image failed, rendering text-only card",
			"image", imagePath, "error", pdf.Error())
		pdf.ClearError()
		return
	}

	w, h := info.Extent()
	scale := 1.0
	if s := imageMaxW / w; s < scale {
		scale = s
	}
	if s := imageMaxH / h; s < scale {
		scale = s
	}
	pdf.ImageOptions(imagePath, pageW-pageMargin-w*scale, pageMargin, w*scale, h*scale, false, opts, 0, "")
	if pdf.Err() {
		r.logger.Warn("placing source image failed, rendering text-only card",
			"image", imagePath, "error", pdf.Error())
		pdf.ClearError()
	}
}
