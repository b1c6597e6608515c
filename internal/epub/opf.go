package epub

import (
	"encoding/xml"
	"fmt"
	"path"
	"strings"
)

// opfPackage represents the OPF XML structure.
type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	UniqueID string      `xml:"unique-identifier,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	Title      []string        `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creator    []string        `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Language   []string        `xml:"http://purl.org/dc/elements/1.1/ language"`
	Identifier []opfIdentifier `xml:"http://purl.org/dc/elements/1.1/ identifier"`
}

type opfIdentifier struct {
	Value string `xml:",chardata"`
	ID    string `xml:"id,attr"`
}

type opfManifest struct {
	Items []opfManifestItem `xml:"item"`
}

type opfManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

type opfSpine struct {
	Toc      string       `xml:"toc,attr"`
	ItemRefs []opfItemRef `xml:"itemref"`
}

type opfItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr"`
}

// ParseOPF parses OPF file content. opfDir is the directory containing the
// OPF file (e.g. "OEBPS"); manifest and spine hrefs are resolved against it.
func ParseOPF(content []byte, opfDir string) (*OPF, error) {
	var pkg opfPackage
	if err := xml.Unmarshal(content, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse OPF XML: %w", err)
	}

	opf := &OPF{
		Manifest: make(map[string]ManifestItem),
	}

	opf.Metadata = parseMetadata(&pkg.Metadata, pkg.UniqueID)

	for _, item := range pkg.Manifest.Items {
		mi := ManifestItem{
			ID:        item.ID,
			Href:      joinOPFPath(opfDir, item.Href),
			MediaType: item.MediaType,
		}
		if item.Properties != "" {
			mi.Properties = strings.Fields(item.Properties)
		}
		opf.Manifest[item.ID] = mi
	}

	for _, ref := range pkg.Spine.ItemRefs {
		item, ok := opf.Manifest[ref.IDRef]
		if !ok {
			continue
		}
		opf.Spine = append(opf.Spine, SpineItem{
			IDRef:  ref.IDRef,
			Href:   item.Href,
			Linear: ref.Linear != "no",
		})
	}

	// Resolve NCX path from the spine's toc attribute.
	if pkg.Spine.Toc != "" {
		if ncxItem, ok := opf.Manifest[pkg.Spine.Toc]; ok {
			opf.NCXPath = ncxItem.Href
		}
	}
	// Some books omit the toc attribute; fall back to media type.
	if opf.NCXPath == "" {
		for _, item := range opf.Manifest {
			if item.MediaType == "application/x-dtbncx+xml" {
				opf.NCXPath = item.Href
				break
			}
		}
	}

	return opf, nil
}

func parseMetadata(meta *opfMetadata, uniqueID string) Metadata {
	md := Metadata{}
	if len(meta.Title) > 0 {
		md.Title = meta.Title[0]
	}
	if len(meta.Creator) > 0 {
		md.Creator = meta.Creator[0]
	}
	if len(meta.Language) > 0 {
		md.Language = meta.Language[0]
	}
	for _, id := range meta.Identifier {
		if id.ID == uniqueID {
			md.Identifier = id.Value
			break
		}
	}
	if md.Identifier == "" && len(meta.Identifier) > 0 {
		md.Identifier = meta.Identifier[0].Value
	}
	return md
}

// joinOPFPath resolves a manifest-relative href against the OPF directory,
// normalizing to forward slashes.
func joinOPFPath(base, rel string) string {
	if base == "" || base == "." {
		return path.Clean(rel)
	}
	return path.Clean(path.Join(base, rel))
}
