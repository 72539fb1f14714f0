package deck

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// RGB is a resolved theme color.
type RGB struct {
	R, G, B uint8
}

// Hex renders the color as the 6-digit uppercase hex OOXML expects.
func (c RGB) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// DefaultAccent is the fixed fallback when the theme has no resolvable
// accent swatch: a dark slate.
var DefaultAccent = RGB{R: 30, G: 41, B: 59}

// Asset is one embedded image harvested from the template. Shared across
// generated slides by reference, never copied or mutated.
type Asset struct {
	PartName    string
	ContentType string
	Data        []byte
}

// Template exposes the reusable facts of an opened package: classified
// layouts, the resolved accent color, and the ordered image pool. Read-only
// for the lifetime of one request.
type Template struct {
	pkg     *Package
	Layouts []Layout
	Accent  RGB
	Images  []Asset

	contentLayout int
	titleLayout   int
}

// Introspect recovers {layouts, accent color, images} from a package. Every
// step is best effort: a template with no usable theme, no images, or odd
// layout wiring still introspects, with documented fallbacks.
func Introspect(p *Package) *Template {
	t := &Template{
		pkg:           p,
		Accent:        DefaultAccent,
		contentLayout: -1,
		titleLayout:   -1,
	}
	t.Layouts = collectLayouts(p)
	t.classify()
	if c, ok := resolveAccent(p); ok {
		t.Accent = c
	}
	t.Images = harvestImages(p)
	return t
}

// classify computes the layout-choice policy once per template:
// "title and content" names the content layout, any name containing "title"
// (the content case included) names the title layout, and the first layout
// is the default.
func (t *Template) classify() {
	for i := range t.Layouts {
		name := strings.ToLower(t.Layouts[i].Name)
		if t.contentLayout < 0 && strings.Contains(name, "title and content") {
			t.contentLayout = i
		}
	}
	for i := range t.Layouts {
		name := strings.ToLower(t.Layouts[i].Name)
		if t.titleLayout < 0 && strings.Contains(name, "title") {
			t.titleLayout = i
		}
	}
}

// layoutFor picks the layout for the slide at index i. The first slide
// prefers the title layout, later slides the content layout, falling back
// to round-robin over the whole list. Deterministic for a given template.
func (t *Template) layoutFor(i int) *Layout {
	if len(t.Layouts) == 0 {
		return nil
	}
	if i == 0 {
		if t.titleLayout >= 0 {
			return &t.Layouts[t.titleLayout]
		}
		if t.contentLayout >= 0 {
			return &t.Layouts[t.contentLayout]
		}
		return &t.Layouts[0]
	}
	if t.contentLayout >= 0 {
		return &t.Layouts[t.contentLayout]
	}
	return &t.Layouts[i%len(t.Layouts)]
}

// firstMaster resolves the first slide master named by the presentation's
// sldMasterIdLst, with the presentation rels as a fallback.
func firstMaster(p *Package) string {
	pres, ok := p.Part(presentationPart)
	if !ok {
		return ""
	}
	rels, err := p.Rels(presentationPart)
	if err != nil {
		return ""
	}
	for _, id := range refIDs(pres, "sldMasterId") {
		if rel, ok := rels.ByID(id); ok && rel.Type == relTypeSlideMaster {
			return resolveTarget(presentationPart, rel.Target)
		}
	}
	if rel, ok := rels.FirstOfType(relTypeSlideMaster); ok {
		return resolveTarget(presentationPart, rel.Target)
	}
	return ""
}

var layoutNumRe = regexp.MustCompile(`slideLayout(\d+)\.xml$`)

// collectLayouts enumerates layouts in the first master's sldLayoutIdLst
// order; when that wiring is broken it falls back to every slideLayout part
// sorted numerically.
func collectLayouts(p *Package) []Layout {
	var names []string

	if master := firstMaster(p); master != "" {
		if data, ok := p.Part(master); ok {
			if rels, err := p.Rels(master); err == nil {
				for _, id := range refIDs(data, "sldLayoutId") {
					if rel, ok := rels.ByID(id); ok && rel.Type == relTypeSlideLayout {
						names = append(names, resolveTarget(master, rel.Target))
					}
				}
			}
		}
	}

	if len(names) == 0 {
		for _, name := range p.PartNames() {
			if strings.HasPrefix(name, "ppt/slideLayouts/") && layoutNumRe.MatchString(name) {
				names = append(names, name)
			}
		}
		sort.Slice(names, func(i, j int) bool {
			return layoutNum(names[i]) < layoutNum(names[j])
		})
	}

	layouts := make([]Layout, 0, len(names))
	for _, name := range names {
		data, ok := p.Part(name)
		if !ok {
			continue
		}
		layouts = append(layouts, parseLayout(name, data))
	}
	return layouts
}

func layoutNum(name string) int {
	m := layoutNumRe.FindStringSubmatch(name)
	if len(m) != 2 {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// refIDs scans a part for elements with the given local name and returns
// their r:id attributes in document order.
func refIDs(data []byte, local string) []string {
	var ids []string
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != local {
			continue
		}
		for _, a := range se.Attr {
			if a.Name.Local == "id" && a.Name.Space != "" {
				ids = append(ids, a.Value)
			}
		}
	}
	return ids
}

// resolveAccent locates the theme's first accent swatch. A system-color
// alias resolves through its lastClr value; otherwise the explicit srgbClr
// value is used. Reports false when the theme is absent or malformed.
func resolveAccent(p *Package) (RGB, bool) {
	theme := themePart(p)
	if theme == "" {
		return RGB{}, false
	}
	data, ok := p.Part(theme)
	if !ok {
		return RGB{}, false
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	inAccent := false
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "accent1":
				inAccent = true
			case "sysClr":
				if inAccent {
					for _, a := range t.Attr {
						if a.Name.Local == "lastClr" {
							return parseHexColor(a.Value)
						}
					}
				}
			case "srgbClr":
				if inAccent {
					for _, a := range t.Attr {
						if a.Name.Local == "val" {
							return parseHexColor(a.Value)
						}
					}
				}
			}
		case xml.EndElement:
			if t.Name.Local == "accent1" {
				inAccent = false
			}
		}
	}
	return RGB{}, false
}

// themePart resolves the first master's theme part, falling back to the
// conventional ppt/theme/theme1.xml.
func themePart(p *Package) string {
	if master := firstMaster(p); master != "" {
		if rels, err := p.Rels(master); err == nil {
			if rel, ok := rels.FirstOfType(relTypeTheme); ok {
				return resolveTarget(master, rel.Target)
			}
		}
	}
	if p.Has("ppt/theme/theme1.xml") {
		return "ppt/theme/theme1.xml"
	}
	return ""
}

func parseHexColor(hex string) (RGB, bool) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return RGB{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
}

// harvestImages walks the relationship graph breadth-first from the package
// root, nested parts included, and collects every embedded image in
// discovery order. The pool lives in memory for one request and is indexed,
// never mutated.
func harvestImages(p *Package) []Asset {
	var assets []Asset
	seenPart := map[string]bool{"": true}
	seenImage := map[string]bool{}
	queue := []string{""}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		rels, err := p.Rels(cur)
		if err != nil {
			continue
		}
		for _, rel := range rels.Items() {
			if rel.Mode == "External" {
				continue
			}
			target := resolveTarget(cur, rel.Target)
			if rel.Type == relTypeImage {
				if seenImage[target] {
					continue
				}
				data, ok := p.Part(target)
				if !ok {
					continue
				}
				seenImage[target] = true
				assets = append(assets, Asset{
					PartName:    target,
					ContentType: p.types.typeOf(target),
					Data:        data,
				})
				continue
			}
			if !seenPart[target] && p.Has(target) {
				seenPart[target] = true
				queue = append(queue, target)
			}
		}
	}
	return assets
}
