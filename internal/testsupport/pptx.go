package testsupport

import (
	"archive/zip"
	"fmt"
	"os"
	"strings"
	"testing"
)

// SlideSpec describes one slide in a synthetic deck.
type SlideSpec struct {
	Texts    []string
	Pictures int
}

const (
	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
	nsDecls   = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`
)

// BuildDeck writes a minimal but well-formed pptx archive to path with one
// slide part per SlideSpec. The archive carries the member layout the
// embedder and rasterizer fallback rely on: [Content_Types].xml, package
// rels, ppt/presentation.xml, and ppt/slides/slideN.xml parts.
func BuildDeck(t *testing.T, path string, slides []SlideSpec) {
	t.Helper()

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create deck: %v", err)
	}
	defer file.Close()

	archive := zip.NewWriter(file)
	write := func(name, content string) {
		entry, err := archive.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}

	var overrides strings.Builder
	for i := range slides {
		fmt.Fprintf(&overrides,
			`<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`,
			i+1)
	}
	write("[Content_Types].xml", xmlHeader+
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`+
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`+
		`<Default Extension="xml" ContentType="application/xml"/>`+
		overrides.String()+
		`</Types>`)

	write("_rels/.rels", xmlHeader+
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>`+
		`</Relationships>`)

	var slideIDs strings.Builder
	for i := range slides {
		fmt.Fprintf(&slideIDs, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, i+2)
	}
	write("ppt/presentation.xml", xmlHeader+
		`<p:presentation `+nsDecls+`>`+
		`<p:sldIdLst>`+slideIDs.String()+`</p:sldIdLst>`+
		`<p:sldSz cx="9144000" cy="6858000"/>`+
		`</p:presentation>`)

	for i, slide := range slides {
		write(fmt.Sprintf("ppt/slides/slide%d.xml", i+1), slideXML(slide))
	}

	if err := archive.Close(); err != nil {
		t.Fatalf("close deck archive: %v", err)
	}
}

func slideXML(slide SlideSpec) string {
	var shapes strings.Builder
	shapeID := 2
	for j, text := range slide.Texts {
		fmt.Fprintf(&shapes,
			`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="TextBox %d"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>`+
				`<p:spPr><a:xfrm><a:off x="914400" y="%d"/><a:ext cx="7315200" cy="914400"/></a:xfrm></p:spPr>`+
				`<p:txBody><a:bodyPr/><a:p><a:r><a:t>%s</a:t></a:r></a:p></p:txBody></p:sp>`,
			shapeID, j+1, 914400+j*1143000, xmlEscape(text))
		shapeID++
	}
	for j := 0; j < slide.Pictures; j++ {
		fmt.Fprintf(&shapes,
			`<p:pic><p:nvPicPr><p:cNvPr id="%d" name="Picture %d"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>`+
				`<p:blipFill><a:blip/></p:blipFill>`+
				`<p:spPr><a:xfrm><a:off x="4572000" y="%d"/><a:ext cx="2286000" cy="1714500"/></a:xfrm></p:spPr></p:pic>`,
			shapeID, j+1, 914400+j*1828800)
		shapeID++
	}

	return xmlHeader +
		`<p:sld ` + nsDecls + `>` +
		`<p:cSld><p:spTree>` +
		`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
		shapes.String() +
		`</p:spTree></p:cSld>` +
		`</p:sld>`
}

func xmlEscape(text string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return replacer.Replace(text)
}
