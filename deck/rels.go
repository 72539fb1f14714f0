package deck

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Relationship types this engine consumes or emits.
const (
	relTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeSlide          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTypeSlideLayout    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relTypeSlideMaster    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relTypeNotesMaster    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesMaster"
	relTypeNotesSlide     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide"
	relTypeImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relTypeTheme          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
)

// Relationship is one edge in the package graph.
type Relationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
	Mode   string `xml:"TargetMode,attr,omitempty"`
}

// Relationships is the edge set of one source part, in document order.
type Relationships struct {
	source string
	items  []Relationship
}

type relsFile struct {
	XMLName xml.Name       `xml:"Relationships"`
	Items   []Relationship `xml:"Relationship"`
}

func parseRelationships(source string, data []byte) (*Relationships, error) {
	var f relsFile
	if err := xml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("relationships of %s: %v", source, err)
	}
	return &Relationships{source: source, items: f.Items}, nil
}

// Items returns the edges in document order.
func (r *Relationships) Items() []Relationship {
	return r.items
}

// ByID looks an edge up by relationship id.
func (r *Relationships) ByID(id string) (Relationship, bool) {
	for _, rel := range r.items {
		if rel.ID == id {
			return rel, true
		}
	}
	return Relationship{}, false
}

// FirstOfType returns the first edge of the given type.
func (r *Relationships) FirstOfType(relType string) (Relationship, bool) {
	for _, rel := range r.items {
		if rel.Type == relType {
			return rel, true
		}
	}
	return Relationship{}, false
}

// Add appends an edge with a fresh id and returns that id. The target is
// relative to the source part.
func (r *Relationships) Add(relType, target string) string {
	id := r.nextID()
	r.items = append(r.items, Relationship{ID: id, Type: relType, Target: target})
	return id
}

// nextID returns "rId{max+1}" across the existing edges.
func (r *Relationships) nextID() string {
	max := 0
	for _, rel := range r.items {
		if n, err := strconv.Atoi(strings.TrimPrefix(rel.ID, "rId")); err == nil && n > max {
			max = n
		}
	}
	return "rId" + strconv.Itoa(max+1)
}

func (r *Relationships) marshal() []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, rel := range r.items {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"`,
			xmlEscape(rel.ID), xmlEscape(rel.Type), xmlEscape(rel.Target))
		if rel.Mode != "" {
			fmt.Fprintf(&b, ` TargetMode="%s"`, xmlEscape(rel.Mode))
		}
		b.WriteString(`/>`)
	}
	b.WriteString(`</Relationships>`)
	return b.Bytes()
}
