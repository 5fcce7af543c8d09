package parser

import "encoding/xml"

// element is a lightweight XML tree used instead of kind-specific unmarshal
// targets: workflow documents mix a fixed control-flow schema with opaque,
// tool-defined action payloads, so the payload subtree must survive as-is.
type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []element  `xml:",any"`
	Text     string     `xml:",chardata"`
}

// tag returns the local element name, with any namespace stripped.
func (e *element) tag() string {
	return e.XMLName.Local
}

func (e *element) attr(name string) string {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (e *element) find(tag string) *element {
	for i := range e.Children {
		if e.Children[i].tag() == tag {
			return &e.Children[i]
		}
	}
	return nil
}

func (e *element) findAll(tag string) []*element {
	var out []*element
	for i := range e.Children {
		if e.Children[i].tag() == tag {
			out = append(out, &e.Children[i])
		}
	}
	return out
}

func (e *element) attrMap() map[string]string {
	if len(e.Attrs) == 0 {
		return nil
	}
	m := make(map[string]string, len(e.Attrs))
	for _, a := range e.Attrs {
		m[a.Name.Local] = a.Value
	}
	return m
}
