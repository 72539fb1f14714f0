package deck

import (
	"bytes"
	"fmt"
	"strings"
)

// EMU conversions. 914400 EMUs per inch.
const emuPerInch = 914400

// Fixed frames for degraded rendering, in EMUs: the free text box sits at
// 1in,2in sized 8in x 4in; the anchored picture at 9in,1.5in, 3in tall.
const (
	textBoxX = 1 * emuPerInch
	textBoxY = 2 * emuPerInch
	textBoxW = 8 * emuPerInch
	textBoxH = 4 * emuPerInch

	pictureX = 9 * emuPerInch
	pictureY = emuPerInch * 3 / 2
	pictureH = 3 * emuPerInch
)

// bodyFontSize is the uniform font size for bound text, in hundredths of a
// point (18pt).
const bodyFontSize = 1800

const slideXMLHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\r\n"

const drawingNamespaces = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`

// slideShapes collects the rendered shape fragments of one slide.
type slideShapes struct {
	frags  []string
	nextID int
}

func newSlideShapes() *slideShapes {
	// Shape id 1 is the root group shape.
	return &slideShapes{nextID: 2}
}

func (s *slideShapes) id() int {
	id := s.nextID
	s.nextID++
	return id
}

// phRef renders the slide-side placeholder reference matching a layout
// placeholder, so the shape inherits its geometry and formatting.
func phRef(ph Placeholder) string {
	var b strings.Builder
	b.WriteString("<p:ph")
	if ph.Type != "" {
		fmt.Fprintf(&b, ` type="%s"`, xmlEscape(ph.Type))
	}
	if ph.Idx != "" {
		fmt.Fprintf(&b, ` idx="%s"`, xmlEscape(ph.Idx))
	}
	b.WriteString("/>")
	return b.String()
}

// addTitle emits a title shape bound to the layout's title placeholder.
func (s *slideShapes) addTitle(ph Placeholder, text string) {
	s.frags = append(s.frags, fmt.Sprintf(
		`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="Title %d"/>`+
			`<p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr>`+
			`<p:nvPr>%s</p:nvPr></p:nvSpPr><p:spPr/>`+
			`<p:txBody><a:bodyPr/><a:lstStyle/>`+
			`<a:p><a:r><a:rPr lang="en-US" dirty="0"/><a:t>%s</a:t></a:r></a:p>`+
			`</p:txBody></p:sp>`,
		s.id(), len(s.frags)+1, phRef(ph), xmlEscape(text)))
}

// addBody emits the body placeholder shape: one paragraph per bullet with
// the uniform font size and brand color.
func (s *slideShapes) addBody(ph Placeholder, bullets []string, color RGB) {
	var paras strings.Builder
	for _, b := range bullets {
		paras.WriteString(paragraph(b, color))
	}
	if len(bullets) == 0 {
		paras.WriteString("<a:p/>")
	}
	s.frags = append(s.frags, fmt.Sprintf(
		`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="Content Placeholder %d"/>`+
			`<p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr>`+
			`<p:nvPr>%s</p:nvPr></p:nvSpPr><p:spPr/>`+
			`<p:txBody><a:bodyPr/><a:lstStyle/>%s</p:txBody></p:sp>`,
		s.id(), len(s.frags)+1, phRef(ph), paras.String()))
}

// addTextBox emits the degraded body: a free-floating box at a fixed frame,
// each bullet prefixed with a bullet glyph.
func (s *slideShapes) addTextBox(bullets []string, color RGB) {
	var paras strings.Builder
	for _, b := range bullets {
		paras.WriteString(paragraph("• "+b, color))
	}
	if len(bullets) == 0 {
		paras.WriteString("<a:p/>")
	}
	s.frags = append(s.frags, fmt.Sprintf(
		`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="TextBox %d"/>`+
			`<p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`+
			`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`+
			`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`+
			`<p:txBody><a:bodyPr wrap="square"><a:spAutoFit/></a:bodyPr><a:lstStyle/>%s</p:txBody></p:sp>`,
		s.id(), len(s.frags)+1, textBoxX, textBoxY, textBoxW, textBoxH, paras.String()))
}

// addPicture emits a picture shape referencing an already-embedded image
// part. With a picture placeholder the frame is inherited; otherwise the
// picture is anchored at the fixed frame with the given width.
func (s *slideShapes) addPicture(relID string, ph *Placeholder, widthEMU int64) {
	nvPr := "<p:nvPr/>"
	frame := fmt.Sprintf(`<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`,
		pictureX, pictureY, widthEMU, int64(pictureH))
	if ph != nil {
		nvPr = "<p:nvPr>" + phRef(*ph) + "</p:nvPr>"
		frame = ""
	}
	s.frags = append(s.frags, fmt.Sprintf(
		`<p:pic><p:nvPicPr><p:cNvPr id="%d" name="Picture %d"/>`+
			`<p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr>%s</p:nvPicPr>`+
			`<p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`+
			`<p:spPr>%s<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`,
		s.id(), len(s.frags)+1, nvPr, xmlEscape(relID), frame))
}

func paragraph(text string, color RGB) string {
	return fmt.Sprintf(
		`<a:p><a:r><a:rPr lang="en-US" sz="%d" dirty="0">`+
			`<a:solidFill><a:srgbClr val="%s"/></a:solidFill></a:rPr>`+
			`<a:t>%s</a:t></a:r></a:p>`,
		bodyFontSize, color.Hex(), xmlEscape(text))
}

// marshalSlide renders the complete slide part.
func (s *slideShapes) marshalSlide() []byte {
	var b bytes.Buffer
	b.WriteString(slideXMLHeader)
	b.WriteString(`<p:sld ` + drawingNamespaces + `>`)
	b.WriteString(`<p:cSld><p:spTree>`)
	b.WriteString(`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`)
	b.WriteString(`<p:grpSpPr/>`)
	for _, f := range s.frags {
		b.WriteString(f)
	}
	b.WriteString(`</p:spTree></p:cSld>`)
	b.WriteString(`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>`)
	b.WriteString(`</p:sld>`)
	return b.Bytes()
}

// marshalNotesSlide renders a minimal notes part carrying the speaker text.
func marshalNotesSlide(notes string) []byte {
	var b bytes.Buffer
	b.WriteString(slideXMLHeader)
	b.WriteString(`<p:notes ` + drawingNamespaces + `>`)
	b.WriteString(`<p:cSld><p:spTree>`)
	b.WriteString(`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`)
	b.WriteString(`<p:grpSpPr/>`)
	b.WriteString(`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Notes Placeholder 1"/>`)
	b.WriteString(`<p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr>`)
	b.WriteString(`<p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr><p:spPr/>`)
	b.WriteString(`<p:txBody><a:bodyPr/><a:lstStyle/>`)
	b.WriteString(`<a:p><a:r><a:rPr lang="en-US" dirty="0"/><a:t>` + xmlEscape(notes) + `</a:t></a:r></a:p>`)
	b.WriteString(`</p:txBody></p:sp>`)
	b.WriteString(`</p:spTree></p:cSld>`)
	b.WriteString(`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>`)
	b.WriteString(`</p:notes>`)
	return b.Bytes()
}
