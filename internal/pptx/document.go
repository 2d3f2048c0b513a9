package pptx

import (
	"fmt"

	"github.com/beevik/etree"
)

const (
	nsRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
	relTypeAudio    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/audio"

	// relIDBase keeps injected relationship identifiers clear of the small
	// ids decks ship with: slide N gets rId(100+N) unless already taken.
	relIDBase = 100
)

// SlideDoc is a parsed slide markup part.
type SlideDoc struct {
	doc *etree.Document
}

// ParseSlide decodes slide markup into a typed handle.
func ParseSlide(data []byte) (*SlideDoc, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse slide markup: %w", err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("parse slide markup: no root element")
	}
	return &SlideDoc{doc: doc}, nil
}

// ShapeTree returns the slide's shape tree element.
func (s *SlideDoc) ShapeTree() (*etree.Element, error) {
	tree := s.doc.FindElement("//p:cSld/p:spTree")
	if tree == nil {
		return nil, fmt.Errorf("slide markup has no shape tree")
	}
	return tree, nil
}

// AppendAudioShape appends a shape node referencing embedded narration audio,
// marked auto-play and hidden while presenting.
func (s *SlideDoc) AppendAudioShape(slideNumber int, relID string) error {
	tree, err := s.ShapeTree()
	if err != nil {
		return err
	}

	shape := tree.CreateElement("p:sp")
	nvSpPr := shape.CreateElement("p:nvSpPr")
	cNvPr := nvSpPr.CreateElement("p:cNvPr")
	cNvPr.CreateAttr("id", fmt.Sprintf("%d", 1000+slideNumber))
	cNvPr.CreateAttr("name", fmt.Sprintf("Narration %d", slideNumber))

	audio := cNvPr.CreateElement("a:audioFile")
	audio.CreateAttr("r:link", relID)
	audio.CreateAttr("autoPlay", "1")
	audio.CreateAttr("hideInSlideShow", "1")

	nvSpPr.CreateElement("p:cNvSpPr")
	nvSpPr.CreateElement("p:nvPr")
	shape.CreateElement("p:spPr")
	return nil
}

// HasAudioShape reports whether the slide already carries an injected
// narration shape.
func (s *SlideDoc) HasAudioShape() bool {
	return s.doc.FindElement("//a:audioFile") != nil
}

// Serialize renders the document back to bytes.
func (s *SlideDoc) Serialize() ([]byte, error) {
	return s.doc.WriteToBytes()
}

// RelsDoc is a parsed per-slide relationship index.
type RelsDoc struct {
	doc  *etree.Document
	root *etree.Element
}

// ParseRels decodes an existing relationship part.
func ParseRels(data []byte) (*RelsDoc, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse relationships: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "Relationships" {
		return nil, fmt.Errorf("parse relationships: unexpected root")
	}
	return &RelsDoc{doc: doc, root: root}, nil
}

// NewRels creates an empty relationship part for slides shipping without one.
func NewRels() *RelsDoc {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement("Relationships")
	root.CreateAttr("xmlns", nsRelationships)
	return &RelsDoc{doc: doc, root: root}
}

// HasID reports whether a relationship with the given identifier exists.
func (r *RelsDoc) HasID(id string) bool {
	for _, rel := range r.root.SelectElements("Relationship") {
		if rel.SelectAttrValue("Id", "") == id {
			return true
		}
	}
	return false
}

// NextAudioID returns a collision-free identifier for slide n's narration
// relationship, starting from the fixed base.
func (r *RelsDoc) NextAudioID(slideNumber int) string {
	candidate := relIDBase + slideNumber
	for r.HasID(fmt.Sprintf("rId%d", candidate)) {
		candidate += relIDBase
	}
	return fmt.Sprintf("rId%d", candidate)
}

// AddAudio appends an audio-typed relationship pointing at target.
func (r *RelsDoc) AddAudio(id, target string) error {
	if r.HasID(id) {
		return fmt.Errorf("relationship id %s already exists", id)
	}
	rel := r.root.CreateElement("Relationship")
	rel.CreateAttr("Id", id)
	rel.CreateAttr("Type", relTypeAudio)
	rel.CreateAttr("Target", target)
	return nil
}

// AudioTargets returns the targets of all audio-typed relationships.
func (r *RelsDoc) AudioTargets() []string {
	var targets []string
	for _, rel := range r.root.SelectElements("Relationship") {
		if rel.SelectAttrValue("Type", "") == relTypeAudio {
			targets = append(targets, rel.SelectAttrValue("Target", ""))
		}
	}
	return targets
}

// Serialize renders the document back to bytes.
func (r *RelsDoc) Serialize() ([]byte, error) {
	return r.doc.WriteToBytes()
}
