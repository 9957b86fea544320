package document

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Page geometry, letter-ish proportions.
const (
	pageWidth    = 850
	pageHeight   = 1100
	marginX      = 70.0
	headerTop    = 90.0
	headerGap    = 24.0
	entryTop     = 190.0
	entryLineGap = 22.0
	entryGap     = 140.0
	footerY      = pageHeight - 50.0
)

var (
	pageBgColor   = color.RGBA{255, 255, 255, 255}
	titleColor    = color.RGBA{40, 44, 48, 255}
	textColor     = color.RGBA{60, 65, 70, 255}
	ruleColor     = color.RGBA{190, 195, 200, 255}
	footerColor   = color.RGBA{130, 135, 140, 255}
	documentTitle = "Confirmación de Citas Médicas"
)

// RenderPage draws one page of the document to PNG. Pages are numbered
// from 1. Layout is fixed and deterministic.
func RenderPage(doc *Document, page int) ([]byte, error) {
	if doc == nil || page < 1 || page > len(doc.Pages) {
		return nil, fmt.Errorf("document: page %d out of range (1..%d)", page, len(doc.Pages))
	}
	p := doc.Pages[page-1]

	dc := gg.NewContext(pageWidth, pageHeight)
	dc.SetColor(pageBgColor)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	y := headerTop
	dc.SetColor(titleColor)
	dc.DrawString(documentTitle, marginX, y)
	y += headerGap

	dc.SetColor(textColor)
	dc.DrawString("Nombre del Paciente: "+p.Patient, marginX, y)
	y += headerGap
	dc.DrawString("Nombre del Usuario: "+p.User, marginX, y)

	dc.SetColor(ruleColor)
	dc.SetLineWidth(1)
	dc.DrawLine(marginX, y+12, pageWidth-marginX, y+12)
	dc.Stroke()

	y = entryTop
	for _, e := range p.Entries {
		dc.SetColor(textColor)
		dc.DrawString("Fecha: "+e.Date, marginX, y)
		dc.DrawString("Horario: "+e.Time, marginX, y+entryLineGap)
		dc.DrawString("Estudio: "+e.Service, marginX, y+2*entryLineGap)
		dc.DrawString("Clínica: "+e.Category, marginX, y+3*entryLineGap)
		y += entryGap
	}

	dc.SetColor(footerColor)
	dc.DrawString(fmt.Sprintf("Página %d de %d", page, len(doc.Pages)), marginX, footerY)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("document: encode page %d: %w", page, err)
	}
	return buf.Bytes(), nil
}
