// Package deck reads a .pptx/.potx template package, introspects its
// reusable layouts, theme accent color, and embedded images, and assembles a
// new deck by appending outline slides onto the same package.
package deck

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var (
	// ErrTemplateRead reports a template package that cannot be opened or
	// is not a presentation.
	ErrTemplateRead = errors.New("template package unreadable")
	// ErrAssembly reports a deck that cannot be built or serialized.
	ErrAssembly = errors.New("deck assembly failed")
)

// ContentType is the MIME type of a serialized deck.
const ContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// DefaultFileName is the suggested download name for generated decks.
const DefaultFileName = "deckforge_output.pptx"

const (
	contentTypesPart = "[Content_Types].xml"
	presentationPart = "ppt/presentation.xml"

	slideContentType      = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	notesSlideContentType = "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"
)

// Package is an arena of OPC parts indexed by part name (no leading slash),
// with relationship edges parsed on demand. Introspection reads it,
// assembly appends to it; parts are never aliased across packages.
type Package struct {
	parts map[string][]byte
	order []string
	types *contentTypes
}

// OpenPackage opens pptx bytes into a part arena. Any structural problem is
// a TemplateReadFailure.
func OpenPackage(b []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateRead, err)
	}

	p := &Package{parts: make(map[string][]byte)}
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: part %s: %v", ErrTemplateRead, f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: part %s: %v", ErrTemplateRead, f.Name, err)
		}
		name := strings.TrimPrefix(f.Name, "/")
		if _, dup := p.parts[name]; !dup {
			p.order = append(p.order, name)
		}
		p.parts[name] = data
	}

	ct, ok := p.parts[contentTypesPart]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrTemplateRead, contentTypesPart)
	}
	p.types, err = parseContentTypes(ct)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateRead, err)
	}
	if !p.Has(presentationPart) {
		return nil, fmt.Errorf("%w: not a presentation package", ErrTemplateRead)
	}
	return p, nil
}

// Has reports whether a part exists.
func (p *Package) Has(name string) bool {
	_, ok := p.parts[name]
	return ok
}

// Part returns a part's bytes.
func (p *Package) Part(name string) ([]byte, bool) {
	data, ok := p.parts[name]
	return data, ok
}

// SetPart stores a part, appending new parts to the zip order.
func (p *Package) SetPart(name string, data []byte) {
	if _, ok := p.parts[name]; !ok {
		p.order = append(p.order, name)
	}
	p.parts[name] = data
}

// PartNames returns the part names in zip order.
func (p *Package) PartNames() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Rels returns the relationships of a part ("" for the package root). A
// missing rels part yields an empty, writable set.
func (p *Package) Rels(part string) (*Relationships, error) {
	name := relsPartName(part)
	data, ok := p.parts[name]
	if !ok {
		return &Relationships{source: part}, nil
	}
	return parseRelationships(part, data)
}

// SetRels writes a part's relationships back into the arena.
func (p *Package) SetRels(rels *Relationships) {
	p.SetPart(relsPartName(rels.source), rels.marshal())
}

// Bytes serializes the package to zip bytes, refreshing the content-types
// part first. A write failure is fatal.
func (p *Package) Bytes() ([]byte, error) {
	p.parts[contentTypesPart] = p.types.marshal()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range p.order {
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("%w: serialize %s: %v", ErrAssembly, name, err)
		}
		if _, err := w.Write(p.parts[name]); err != nil {
			return nil, fmt.Errorf("%w: serialize %s: %v", ErrAssembly, name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: serialize: %v", ErrAssembly, err)
	}
	return buf.Bytes(), nil
}

// relsPartName maps a part to its relationships part.
func relsPartName(part string) string {
	if part == "" {
		return "_rels/.rels"
	}
	dir, base := path.Split(part)
	return dir + "_rels/" + base + ".rels"
}

// resolveTarget resolves a relationship target against its source part.
func resolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	dir := path.Dir(source)
	if source == "" || dir == "." {
		return path.Clean(target)
	}
	return path.Clean(path.Join(dir, target))
}

// relativeTarget renders target relative to the source part's directory.
func relativeTarget(source, target string) string {
	srcDir := path.Dir(source)
	if source == "" || srcDir == "." {
		return target
	}
	prefix := srcDir
	up := ""
	for prefix != "." && !strings.HasPrefix(target, prefix+"/") {
		prefix = path.Dir(prefix)
		up += "../"
	}
	if prefix == "." {
		return up + target
	}
	return up + strings.TrimPrefix(target, prefix+"/")
}

// --- content types ---

type contentTypes struct {
	defaults  []ctDefault  // extension (lower-case) -> type
	overrides []ctOverride // part name with leading slash -> type
}

type ctDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type ctOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type ctFile struct {
	XMLName   xml.Name     `xml:"Types"`
	Defaults  []ctDefault  `xml:"Default"`
	Overrides []ctOverride `xml:"Override"`
}

func parseContentTypes(data []byte) (*contentTypes, error) {
	var f ctFile
	if err := xml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("content types: %v", err)
	}
	return &contentTypes{defaults: f.Defaults, overrides: f.Overrides}, nil
}

// typeOf resolves a part's content type: override first, then extension
// default.
func (c *contentTypes) typeOf(part string) string {
	withSlash := "/" + part
	for _, o := range c.overrides {
		if o.PartName == withSlash {
			return o.ContentType
		}
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(part), "."))
	for _, d := range c.defaults {
		if strings.ToLower(d.Extension) == ext {
			return d.ContentType
		}
	}
	return ""
}

func (c *contentTypes) addOverride(part, contentType string) {
	withSlash := "/" + part
	for _, o := range c.overrides {
		if o.PartName == withSlash {
			return
		}
	}
	c.overrides = append(c.overrides, ctOverride{PartName: withSlash, ContentType: contentType})
}

func (c *contentTypes) marshal() []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	for _, d := range c.defaults {
		fmt.Fprintf(&b, `<Default Extension="%s" ContentType="%s"/>`, xmlEscape(d.Extension), xmlEscape(d.ContentType))
	}
	for _, o := range c.overrides {
		fmt.Fprintf(&b, `<Override PartName="%s" ContentType="%s"/>`, xmlEscape(o.PartName), xmlEscape(o.ContentType))
	}
	b.WriteString(`</Types>`)
	return b.Bytes()
}

func xmlEscape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
