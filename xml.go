package databind

import (
	"bytes"
	"encoding/xml"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// XMLNode is one element of an XML document tree.
type XMLNode struct {
	Name     string
	Attrs    map[string]string
	Text     string
	Children []*XMLNode
}

// DecodeXML parses an XML document into an element tree.
func (m *Mapper) DecodeXML(data []byte) (*XMLNode, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var root *XMLNode
	var stack []*XMLNode
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "parsing xml")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			node := &XMLNode{Name: t.Name.Local}
			if len(t.Attr) > 0 {
				node.Attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					node.Attrs[a.Name.Local] = a.Value
				}
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("multiple root elements")
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errors.Errorf("unexpected closing tag </%s>", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}
	if len(stack) > 0 {
		return nil, errors.Errorf("unclosed element <%s>", stack[len(stack)-1].Name)
	}
	if root == nil {
		return nil, errors.New("empty xml document")
	}
	return root, nil
}

// EncodeXML serializes an element tree as indented XML.
func (m *Mapper) EncodeXML(root *XMLNode) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := writeXMLNode(enc, root); err != nil {
		return nil, errors.Wrap(err, "writing xml")
	}
	if err := enc.Flush(); err != nil {
		return nil, errors.Wrap(err, "writing xml")
	}
	return buf.Bytes(), nil
}

func writeXMLNode(enc *xml.Encoder, node *XMLNode) error {
	start := xml.StartElement{Name: xml.Name{Local: node.Name}}
	names := make([]string, 0, len(node.Attrs))
	for name := range node.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Local: name},
			Value: node.Attrs[name],
		})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if text := strings.TrimSpace(node.Text); text != "" {
		if err := enc.EncodeToken(xml.CharData(text)); err != nil {
			return err
		}
	}
	for _, child := range node.Children {
		if err := writeXMLNode(enc, child); err != nil {
			return err
		}
	}
	return enc.EncodeToken(xml.EndElement{Name: start.Name})
}

// Value flattens the element into the generic model. Leaf elements become
// their text; elements with children become a Map where repeated child
// names collect into a Seq. Attributes map under "@name" keys.
func (n *XMLNode) Value() Value {
	if len(n.Children) == 0 && len(n.Attrs) == 0 {
		return strings.TrimSpace(n.Text)
	}
	m := make(Map)
	for name, val := range n.Attrs {
		m["@"+name] = val
	}
	for _, child := range n.Children {
		cv := child.Value()
		switch existing := m[child.Name].(type) {
		case nil:
			if _, taken := m[child.Name]; taken {
				m[child.Name] = Seq{nil, cv}
			} else {
				m[child.Name] = cv
			}
		case Seq:
			m[child.Name] = append(existing, cv)
		default:
			m[child.Name] = Seq{existing, cv}
		}
	}
	if text := strings.TrimSpace(n.Text); text != "" {
		m["#text"] = text
	}
	return m
}
