package pptx

import (
	"archive/zip"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"slidecast/internal/services"
)

// Standard slide dimensions in EMUs, used when presentation.xml omits sldSz.
const (
	DefaultSlideWidthEMU  = 9144000
	DefaultSlideHeightEMU = 6858000
)

// DeckInfo summarizes the structure of a deck archive.
type DeckInfo struct {
	SlideCount     int
	HasNotes       bool
	SlideWidthEMU  int64
	SlideHeightEMU int64
}

// ReadInfo inspects a deck archive without materializing it.
func ReadInfo(deckPath string) (DeckInfo, error) {
	reader, err := zip.OpenReader(deckPath)
	if err != nil {
		return DeckInfo{}, services.Wrap(services.ErrPackageCorrupt, "pptx", "open archive", deckPath, err)
	}
	defer reader.Close()

	info := DeckInfo{
		SlideWidthEMU:  DefaultSlideWidthEMU,
		SlideHeightEMU: DefaultSlideHeightEMU,
	}

	data, err := readMember(&reader.Reader, "ppt/presentation.xml")
	if err != nil {
		return DeckInfo{}, services.Wrap(services.ErrPackageCorrupt, "pptx", "read presentation part", deckPath, err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return DeckInfo{}, services.Wrap(services.ErrPackageCorrupt, "pptx", "parse presentation part", deckPath, err)
	}
	info.SlideCount = len(doc.FindElements("//p:sldIdLst/p:sldId"))

	if size := doc.FindElement("//p:sldSz"); size != nil {
		if cx, err := strconv.ParseInt(size.SelectAttrValue("cx", ""), 10, 64); err == nil && cx > 0 {
			info.SlideWidthEMU = cx
		}
		if cy, err := strconv.ParseInt(size.SelectAttrValue("cy", ""), 10, 64); err == nil && cy > 0 {
			info.SlideHeightEMU = cy
		}
	}

	for _, member := range reader.File {
		if strings.HasPrefix(member.Name, "ppt/notesSlides/notesSlide") {
			info.HasNotes = true
			break
		}
	}

	if info.SlideCount == 0 {
		return DeckInfo{}, services.Wrap(services.ErrValidation, "pptx", "inspect deck", "deck has no slides", nil)
	}
	return info, nil
}

// ReadSlideShapes parses slide n's shape geometry straight from the archive,
// for the geometry-compositing rasterization fallback.
func ReadSlideShapes(deckPath string, slideNumber int) ([]Shape, error) {
	reader, err := zip.OpenReader(deckPath)
	if err != nil {
		return nil, services.Wrap(services.ErrPackageCorrupt, "pptx", "open archive", deckPath, err)
	}
	defer reader.Close()

	name := fmt.Sprintf("ppt/slides/slide%d.xml", slideNumber)
	data, err := readMember(&reader.Reader, name)
	if err != nil {
		return nil, services.Wrap(services.ErrAssetMissing, "pptx", "read slide part", name, err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, services.Wrap(services.ErrPackageCorrupt, "pptx", "parse slide part", name, err)
	}
	return collectShapes(doc), nil
}

func readMember(reader *zip.Reader, name string) ([]byte, error) {
	for _, member := range reader.File {
		if member.Name == name {
			source, err := member.Open()
			if err != nil {
				return nil, err
			}
			defer source.Close()
			return io.ReadAll(source)
		}
	}
	return nil, fmt.Errorf("archive member %s not found", name)
}
