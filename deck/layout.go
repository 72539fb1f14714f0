package deck

import (
	"bytes"
	"encoding/xml"
)

// PlaceholderRole classifies a layout placeholder the assembler can bind.
type PlaceholderRole int

const (
	RoleOther PlaceholderRole = iota
	RoleTitle
	RoleBody
	RolePicture
)

// Geometry is a placeholder's frame in EMUs, when the layout spells one out.
type Geometry struct {
	X, Y, W, H int64
}

// Placeholder is a typed region on a layout that slides inherit and fill.
// Type and Idx carry the raw attributes so bound slides can reference the
// same placeholder.
type Placeholder struct {
	Role     PlaceholderRole
	Type     string
	Idx      string
	Geometry *Geometry
}

// Layout is a reusable slide skeleton. Identity is its position in the
// template's layout list; layouts are referenced, never copied.
type Layout struct {
	PartName     string
	Name         string
	Placeholders []Placeholder
}

// Find returns the first placeholder with the given role.
func (l *Layout) Find(role PlaceholderRole) (Placeholder, bool) {
	for _, ph := range l.Placeholders {
		if ph.Role == role {
			return ph, true
		}
	}
	return Placeholder{}, false
}

// roleOf maps a raw ph type attribute to a role. An omitted type attribute
// means "body" in the schema, which is how content placeholders appear.
func roleOf(phType string) PlaceholderRole {
	switch phType {
	case "title", "ctrTitle":
		return RoleTitle
	case "body", "":
		return RoleBody
	case "pic":
		return RolePicture
	default:
		return RoleOther
	}
}

// parseLayout scrapes the layout name and placeholder inventory out of a
// slideLayout part. Parsing is by local element name so namespace prefixes
// do not matter; anything unreadable yields a layout with what was found.
func parseLayout(partName string, data []byte) Layout {
	l := Layout{PartName: partName}

	dec := xml.NewDecoder(bytes.NewReader(data))
	var cur *Placeholder
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "cSld":
				for _, a := range t.Attr {
					if a.Name.Local == "name" {
						l.Name = a.Value
					}
				}
			case "sp":
				cur = nil
			case "ph":
				ph := Placeholder{}
				for _, a := range t.Attr {
					switch a.Name.Local {
					case "type":
						ph.Type = a.Value
					case "idx":
						ph.Idx = a.Value
					}
				}
				ph.Role = roleOf(ph.Type)
				l.Placeholders = append(l.Placeholders, ph)
				cur = &l.Placeholders[len(l.Placeholders)-1]
			case "off":
				if cur != nil {
					g := geometryOf(cur)
					g.X = emuAttr(t, "x")
					g.Y = emuAttr(t, "y")
				}
			case "ext":
				if cur != nil {
					g := geometryOf(cur)
					g.W = emuAttr(t, "cx")
					g.H = emuAttr(t, "cy")
				}
			}
		case xml.EndElement:
			if t.Name.Local == "sp" {
				cur = nil
			}
		}
	}
	return l
}

func geometryOf(ph *Placeholder) *Geometry {
	if ph.Geometry == nil {
		ph.Geometry = &Geometry{}
	}
	return ph.Geometry
}

func emuAttr(el xml.StartElement, name string) int64 {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			var v int64
			for _, c := range a.Value {
				if c < '0' || c > '9' {
					return 0
				}
				v = v*10 + int64(c-'0')
			}
			return v
		}
	}
	return 0
}
