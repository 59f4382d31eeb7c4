package domain

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	rootTag = "oriondata"
	measTag = "meas"
)

// truncatedTailRe matches a damaged closing tag and everything after it. The
// station occasionally cuts the transfer off mid-tag or pads the tail with
// null bytes; everything from "</ori" onward is replaced with the canonical
// closing tag before structural parsing.
var truncatedTailRe = regexp.MustCompile(`(?s)</ori(ondata)?.*$`)

// Document is the parsed form of one station sample.
type Document struct {
	Groups   map[GroupClass]Group
	Repaired bool   // a truncated document was repaired before parsing
	Tail     string // trailing bytes after repair, for the repair diagnostic
}

type measElement struct {
	XMLName xml.Name
	Name    string `xml:"name,attr"`
	Unit    string `xml:"unit,attr"`
	Value   string `xml:",chardata"`
}

type orionElement struct {
	XMLName  xml.Name
	Children []measElement `xml:",any"`
}

// ParseDocument turns one raw Enhanced XML document into measurement groups.
// The document must be rooted at <oriondata> with <meas> as its first child.
// Unknown measurement names are skipped; elements other than <meas> are
// ignored. Parsing is pure: identical input yields an identical Document.
func ParseDocument(data []byte) (*Document, error) {
	doc := &Document{Groups: make(map[GroupClass]Group)}

	if bytes.HasPrefix(data, []byte("<"+rootTag)) && !bytes.HasSuffix(data, []byte("</"+rootTag+">")) {
		data = truncatedTailRe.ReplaceAll(data, []byte("</"+rootTag+">"))
		doc.Repaired = true
		doc.Tail = tailOf(data)
	}

	var root orionElement
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{Fragment: tailOf(data), Err: err}
	}
	if root.XMLName.Local != rootTag {
		return nil, &ParseError{Fragment: root.XMLName.Local, Err: errors.New("root element is not <oriondata>")}
	}
	if len(root.Children) == 0 || root.Children[0].XMLName.Local != measTag {
		return nil, &ParseError{Err: errors.New("first element under <oriondata> is not <meas>")}
	}

	for _, el := range root.Children {
		if el.XMLName.Local != measTag {
			continue
		}
		class, known := measurementClasses[el.Name]
		if !known {
			continue
		}
		g, ok := doc.Groups[class]
		if !ok {
			g = Group{
				Class:  class,
				Values: make(map[string]float64),
				Times:  make(map[string]string),
			}
		}
		if unitDesignators[el.Name] {
			if class == ClassGeneric {
				g.BaseUnits = "generic"
			} else {
				g.BaseUnits = el.Unit
			}
		}
		text := strings.TrimSpace(el.Value)
		if clockMeasurements[el.Name] {
			g.Times[el.Name] = text
		} else {
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, &ParseError{
					Fragment: fmt.Sprintf("<meas name=%q>%s", el.Name, text),
					Err:      err,
				}
			}
			g.Values[el.Name] = v
		}
		doc.Groups[class] = g
	}
	return doc, nil
}

// tailOf returns the last few bytes of data for diagnostics.
func tailOf(data []byte) string {
	const n = 18
	if len(data) <= n {
		return string(data)
	}
	return string(data[len(data)-n:])
}
