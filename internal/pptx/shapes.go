package pptx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// ShapeKind tags the rendering treatment a shape receives in the geometry
// fallback rasterizer.
type ShapeKind string

const (
	ShapeText    ShapeKind = "text"
	ShapePicture ShapeKind = "picture"
	ShapeOther   ShapeKind = "other"
)

// Shape is a slide shape reduced to its bounding box and text content.
// Coordinates are EMUs as stored in the markup.
type Shape struct {
	Kind      ShapeKind
	Text      string
	LeftEMU   int64
	TopEMU    int64
	WidthEMU  int64
	HeightEMU int64
}

func collectShapes(doc *etree.Document) []Shape {
	var shapes []Shape
	for _, element := range doc.FindElements("//p:spTree/p:sp") {
		shape := Shape{Kind: ShapeOther}
		shape.LeftEMU, shape.TopEMU, shape.WidthEMU, shape.HeightEMU = shapeBox(element)
		if text := shapeText(element); text != "" {
			shape.Kind = ShapeText
			shape.Text = text
		}
		shapes = append(shapes, shape)
	}
	for _, element := range doc.FindElements("//p:spTree/p:pic") {
		shape := Shape{Kind: ShapePicture}
		shape.LeftEMU, shape.TopEMU, shape.WidthEMU, shape.HeightEMU = shapeBox(element)
		shapes = append(shapes, shape)
	}
	return shapes
}

func shapeBox(element *etree.Element) (left, top, width, height int64) {
	xfrm := element.FindElement(".//a:xfrm")
	if xfrm == nil {
		return 0, 0, 0, 0
	}
	if off := xfrm.FindElement("a:off"); off != nil {
		left = parseEMU(off.SelectAttrValue("x", ""))
		top = parseEMU(off.SelectAttrValue("y", ""))
	}
	if ext := xfrm.FindElement("a:ext"); ext != nil {
		width = parseEMU(ext.SelectAttrValue("cx", ""))
		height = parseEMU(ext.SelectAttrValue("cy", ""))
	}
	return left, top, width, height
}

func shapeText(element *etree.Element) string {
	var runs []string
	for _, text := range element.FindElements(".//p:txBody//a:t") {
		if value := text.Text(); value != "" {
			runs = append(runs, value)
		}
	}
	return strings.TrimSpace(strings.Join(runs, " "))
}

func parseEMU(value string) int64 {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}
