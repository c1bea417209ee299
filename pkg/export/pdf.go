// Package export renders a story to printable formats.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/jung-kurt/gofpdf"
	"github.com/jwebster45206/storyloom/pkg/prompts"
	"github.com/jwebster45206/storyloom/pkg/story"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	lineHeight = 6.0
	fontFamily = "Helvetica"
)

// WritePDF renders every page of the story, with its options, as an A4
// document. Illustrations are referenced by link rather than embedded.
func WritePDF(w io.Writer, s story.StoryState) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := Title(s)
	pdf.SetTitle(title, true)
	pdf.SetCreator(prompts.AppName, true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("%d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont(fontFamily, "B", 20)
	pdf.MultiCell(0, 10, tr(title), "", "C", false)
	pdf.Ln(4)

	pdf.SetFont(fontFamily, "", 10)
	meta := fmt.Sprintf("%s | %s | %s", s.Genre, s.AgeBracket, s.Locale)
	pdf.MultiCell(0, lineHeight, tr(meta), "", "C", false)
	pdf.Ln(4)

	writeCast(pdf, tr, s.Characters)
	writeLore(pdf, tr, s.Lore)

	for i, page := range s.Pages {
		pdf.AddPage()
		pdf.SetFont(fontFamily, "B", 14)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("%d", i+1)), "", 1, "L", false, 0, "")

		if page.CreatedAt > 0 {
			pdf.SetFont(fontFamily, "I", 8)
			created := time.UnixMilli(page.CreatedAt).UTC().Format(time.RFC822)
			pdf.CellFormat(0, lineHeight, created, "", 1, "L", false, 0, "")
		}

		pdf.SetFont(fontFamily, "", 12)
		for _, para := range paragraphs(page.Text) {
			pdf.MultiCell(0, lineHeight, tr(para), "", "J", false)
			pdf.Ln(2)
		}

		if isLinkable(page.ImageURL) {
			pdf.SetFont(fontFamily, "U", 9)
			pdf.SetTextColor(40, 80, 160)
			pdf.WriteLinkString(lineHeight, "illustration", page.ImageURL)
			pdf.SetTextColor(0, 0, 0)
			pdf.Ln(lineHeight * 1.5)
		}

		if len(page.Options) > 0 {
			pdf.SetFont(fontFamily, "B", 11)
			pdf.Ln(2)
			for j, opt := range page.Options {
				pdf.MultiCell(0, lineHeight, tr(fmt.Sprintf("%d. %s", j+1, opt.Summary)), "", "L", false)
			}
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

// Title is the document title for a story.
func Title(s story.StoryState) string {
	if s.Theme != "" {
		return s.Theme
	}
	return prompts.AppName
}

// Filename is a filesystem-friendly name for the exported document.
func Filename(s story.StoryState) string {
	base := strings.ToLower(strings.TrimSpace(Title(s)))
	// Decompose and drop combining marks so "niños" keeps its letters.
	if folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), base); err == nil {
		base = folded
	}
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, base)
	if base == "" {
		base = "story"
	}
	return base + ".pdf"
}

func writeCast(pdf *gofpdf.Fpdf, tr func(string) string, chars []story.CharacterDescriptor) {
	if len(chars) == 0 {
		return
	}
	pdf.SetFont(fontFamily, "B", 12)
	pdf.CellFormat(0, 8, "Cast", "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 10)
	for _, c := range chars {
		line := fmt.Sprintf("%s (%s): %s", c.Name, c.Role, strings.Join(c.Traits, ", "))
		pdf.MultiCell(0, lineHeight, tr(line), "", "L", false)
	}
	pdf.Ln(3)
}

func writeLore(pdf *gofpdf.Fpdf, tr func(string) string, lore story.Lore) {
	if lore.Setting == "" && len(lore.Rules) == 0 && len(lore.Objects) == 0 {
		return
	}
	pdf.SetFont(fontFamily, "B", 12)
	pdf.CellFormat(0, 8, "World", "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 10)
	if lore.Setting != "" {
		pdf.MultiCell(0, lineHeight, tr(lore.Setting), "", "L", false)
	}
	for _, item := range append(append([]string{}, lore.Rules...), lore.Objects...) {
		pdf.MultiCell(0, lineHeight, tr("- "+item), "", "L", false)
	}
}

func paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Data URLs are too long to be useful as links.
func isLinkable(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}
